package constants

// DispatchPolicy distinguishes corporate billing arrangements. G2G accounts are
// billed company-to-company; P2P trips are settled by the passenger.
type DispatchPolicy string

const (
	PolicyG2G DispatchPolicy = "G2G"
	PolicyP2P DispatchPolicy = "P2P"
)

// DutyPackage is the usage package half of a duty type code.
type DutyPackage string

// Stable values (these exact strings appear in the Duty Type column).
const (
	PackageHalfDay    DutyPackage = "04HR 40KMS"
	PackageFullDay    DutyPackage = "08HR 80KMS"
	PackageOutstation DutyPackage = "Outstation NKMS"
)

// DutyCode joins a dispatch policy and a usage package into the Duty Type
// column value, e.g. "G2G-08HR 80KMS".
func DutyCode(policy DispatchPolicy, pkg DutyPackage) string {
	return string(policy) + "-" + string(pkg)
}

// DefaultOutstationKMS is used when no route distance is known.
const DefaultOutstationKMS = 250
