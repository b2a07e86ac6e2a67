// Package fieldmap resolves raw document labels ("Name of Employee",
// "Pick-up Address") into canonical booking fields. Resolution is pure and
// deterministic: exact dictionary first, then ordered substring rules, then
// a miss that callers treat as "drop this field".
package fieldmap

import (
	"strings"

	"github.com/fleetdesk/booking-intake/constants"
)

// exact maps normalized labels straight to a canonical field.
var exact = map[string]constants.Field{
	"company name":                    constants.FieldCustomer,
	"company":                         constants.FieldCustomer,
	"corporate":                       constants.FieldCustomer,
	"customer":                        constants.FieldCustomer,
	"name & contact number of booker": constants.FieldBookedByName,
	"booker name":                     constants.FieldBookedByName,
	"booked by":                       constants.FieldBookedByName,
	"email id of booker":              constants.FieldBookedByEmail,
	"booker email":                    constants.FieldBookedByEmail,
	"name of the user":                constants.FieldPassengerName,
	"name of employee":                constants.FieldPassengerName,
	"passenger name":                  constants.FieldPassengerName,
	"user name":                       constants.FieldPassengerName,
	"guest name":                      constants.FieldPassengerName,
	"global leaders":                  constants.FieldPassengerName,
	"mobile no. of the user":          constants.FieldPassengerPhone,
	"contact number":                  constants.FieldPassengerPhone,
	"user mobile":                     constants.FieldPassengerPhone,
	"passenger phone":                 constants.FieldPassengerPhone,
	"email id of user":                constants.FieldPassengerEmail,
	"user email":                      constants.FieldPassengerEmail,
	"passenger email":                 constants.FieldPassengerEmail,
	"city":                            constants.FieldFromLocation,
	"city in which car is required":   constants.FieldFromLocation,
	"pickup city":                     constants.FieldFromLocation,
	"service city":                    constants.FieldFromLocation,
	"car type":                        constants.FieldVehicleGroup,
	"cab type":                        constants.FieldVehicleGroup,
	"vehicle type":                    constants.FieldVehicleGroup,
	"vehicle":                         constants.FieldVehicleGroup,
	"1car type (indigo/dzire/fiesta)": constants.FieldVehicleGroup,
	"type of duty":                    constants.FieldDutyType,
	"service type":                    constants.FieldDutyType,
	"duty type":                       constants.FieldDutyType,
	"only drop / local full day":      constants.FieldDutyType,
	"at disposal":                     constants.FieldDutyType,
	"date of requirement":             constants.FieldStartDate,
	"date of travel":                  constants.FieldStartDate,
	"service date":                    constants.FieldStartDate,
	"from date & to date":             constants.FieldStartDate,
	"date & city / car":               constants.FieldStartDate,
	"reporting time":                  constants.FieldReportingTime,
	"pickup time":                     constants.FieldReportingTime,
	"pick-up time":                    constants.FieldReportingTime,
	"pick up – time":                  constants.FieldReportingTime,
	"time":                            constants.FieldReportingTime,
	"reporting":                       constants.FieldReportingAddress,
	"reporting address":               constants.FieldReportingAddress,
	"pickup address":                  constants.FieldReportingAddress,
	"pick-up address":                 constants.FieldReportingAddress,
	"pick up address":                 constants.FieldReportingAddress,
	"drop at":                         constants.FieldDropAddress,
	"drop address":                    constants.FieldDropAddress,
	"flight details":                  constants.FieldFlightTrainNumber,
	"flight/train number":             constants.FieldFlightTrainNumber,
	"comments":                        constants.FieldRemarks,
	"remarks":                         constants.FieldRemarks,
}

// categoryRule is a substring fallback. Rules run in order; the first hit
// wins, so narrower patterns sit above broader ones.
type categoryRule struct {
	substr string
	field  constants.Field
}

var categoryRules = []categoryRule{
	{"pick up", constants.FieldReportingAddress},
	{"pickup", constants.FieldReportingAddress},
	{"drop", constants.FieldDropAddress},
	{"address", constants.FieldReportingAddress},
	{"phone", constants.FieldPassengerPhone},
	{"mobile", constants.FieldPassengerPhone},
	{"contact", constants.FieldPassengerPhone},
	{"email", constants.FieldPassengerEmail},
	{"name", constants.FieldPassengerName},
	{"date", constants.FieldStartDate},
	{"time", constants.FieldReportingTime},
	{"vehicle", constants.FieldVehicleGroup},
	{"car", constants.FieldVehicleGroup},
	{"cab", constants.FieldVehicleGroup},
	{"company", constants.FieldCustomer},
	{"corporate", constants.FieldCustomer},
	{"flight", constants.FieldFlightTrainNumber},
	{"train", constants.FieldFlightTrainNumber},
	{"remark", constants.FieldRemarks},
	{"comment", constants.FieldRemarks},
	{"duty", constants.FieldDutyType},
	{"city", constants.FieldFromLocation},
}

// Mapper resolves raw labels to canonical fields.
type Mapper struct{}

func New() *Mapper {
	return &Mapper{}
}

// Map resolves a raw label. The second return is false when the label is
// unknown; callers drop the field silently in that case.
func (m *Mapper) Map(rawLabel string) (constants.Field, bool) {
	key := Normalize(rawLabel)
	if key == "" {
		return "", false
	}
	if f, ok := exact[key]; ok {
		return f, true
	}
	// canonical keys resolve to themselves, so machine-produced labels
	// round-trip without alias entries
	if constants.IsKnownField(key) {
		return constants.Field(key), true
	}
	for _, rule := range categoryRules {
		if strings.Contains(key, rule.substr) {
			// "drop" in an address label must not shadow the pickup side.
			if rule.field == constants.FieldDropAddress && (strings.Contains(key, "pick up") || strings.Contains(key, "pickup")) {
				continue
			}
			return rule.field, true
		}
	}
	return "", false
}

// Normalize lowercases, trims, and collapses interior whitespace so lookup
// keys are stable across OCR noise.
func Normalize(rawLabel string) string {
	key := strings.ToLower(strings.TrimSpace(rawLabel))
	key = strings.TrimRight(key, ":*")
	key = strings.TrimSpace(key)
	return strings.Join(strings.Fields(key), " ")
}
