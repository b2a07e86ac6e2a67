package constants

// Field is the canonical key for a booking attribute. These keys are what the
// field mapper resolves raw document labels into, and what the extraction
// oracle is asked to return.
type Field string

const (
	FieldCustomer          Field = "customer"
	FieldBookedByName      Field = "booked_by_name"
	FieldBookedByPhone     Field = "booked_by_phone"
	FieldBookedByEmail     Field = "booked_by_email"
	FieldPassengerName     Field = "passenger_name"
	FieldPassengerPhone    Field = "passenger_phone"
	FieldPassengerEmail    Field = "passenger_email"
	FieldFromLocation      Field = "from_location"
	FieldToLocation        Field = "to_location"
	FieldVehicleGroup      Field = "vehicle_group"
	FieldDutyType          Field = "duty_type"
	FieldStartDate         Field = "start_date"
	FieldEndDate           Field = "end_date"
	FieldReportingTime     Field = "reporting_time"
	FieldReportingAddress  Field = "reporting_address"
	FieldDropAddress       Field = "drop_address"
	FieldFlightTrainNumber Field = "flight_train_number"
	FieldDispatchCenter    Field = "dispatch_center"
	FieldRemarks           Field = "remarks"
	FieldLabels            Field = "labels"
)

// Placeholder marks a field that could not be filled. Output rows always carry
// all twenty columns; a missing value is written as this token, never omitted.
const Placeholder = "NA"

// allFields lists the canonical fields in output column order.
var allFields = []Field{
	FieldCustomer,
	FieldBookedByName,
	FieldBookedByPhone,
	FieldBookedByEmail,
	FieldPassengerName,
	FieldPassengerPhone,
	FieldPassengerEmail,
	FieldFromLocation,
	FieldToLocation,
	FieldVehicleGroup,
	FieldDutyType,
	FieldStartDate,
	FieldEndDate,
	FieldReportingTime,
	FieldReportingAddress,
	FieldDropAddress,
	FieldFlightTrainNumber,
	FieldDispatchCenter,
	FieldRemarks,
	FieldLabels,
}

// columnTitles are the human-readable sheet headers, index-aligned with allFields.
var columnTitles = map[Field]string{
	FieldCustomer:          "Customer",
	FieldBookedByName:      "Booked By Name",
	FieldBookedByPhone:     "Booked By Phone Number",
	FieldBookedByEmail:     "Booked By Email",
	FieldPassengerName:     "Passenger Name",
	FieldPassengerPhone:    "Passenger Phone Number",
	FieldPassengerEmail:    "Passenger Email",
	FieldFromLocation:      "From (Service Location)",
	FieldToLocation:        "To",
	FieldVehicleGroup:      "Vehicle Group",
	FieldDutyType:          "Duty Type",
	FieldStartDate:         "Start Date",
	FieldEndDate:           "End Date",
	FieldReportingTime:     "Rep. Time",
	FieldReportingAddress:  "Reporting Address",
	FieldDropAddress:       "Drop Address",
	FieldFlightTrainNumber: "Flight/Train Number",
	FieldDispatchCenter:    "Dispatch center",
	FieldRemarks:           "Remarks",
	FieldLabels:            "Labels",
}

// AllFields returns the canonical fields in output column order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ColumnTitle returns the sheet header for a canonical field.
func ColumnTitle(f Field) string {
	return columnTitles[f]
}

// ColumnTitles returns all twenty sheet headers in column order.
func ColumnTitles() []string {
	out := make([]string, len(allFields))
	for i, f := range allFields {
		out[i] = columnTitles[f]
	}
	return out
}

// IsKnownField reports whether s is one of the canonical field keys.
func IsKnownField(s string) bool {
	for _, f := range allFields {
		if string(f) == s {
			return true
		}
	}
	return false
}
