package booking

import (
	"strings"

	"github.com/fleetdesk/booking-intake/constants"
)

// Record is the canonical booking row. The twenty column fields mirror the
// output sheet; Confidence and Method describe how the record was produced
// and are not exported as columns.
type Record struct {
	Customer          string `json:"customer,omitempty"`
	BookedByName      string `json:"booked_by_name,omitempty"`
	BookedByPhone     string `json:"booked_by_phone,omitempty"`
	BookedByEmail     string `json:"booked_by_email,omitempty"`
	PassengerName     string `json:"passenger_name,omitempty"`
	PassengerPhone    string `json:"passenger_phone,omitempty"`
	PassengerEmail    string `json:"passenger_email,omitempty"`
	FromLocation      string `json:"from_location,omitempty"`
	ToLocation        string `json:"to_location,omitempty"`
	VehicleGroup      string `json:"vehicle_group,omitempty"`
	DutyType          string `json:"duty_type,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
	EndDate           string `json:"end_date,omitempty"`
	ReportingTime     string `json:"reporting_time,omitempty"`
	ReportingAddress  string `json:"reporting_address,omitempty"`
	DropAddress       string `json:"drop_address,omitempty"`
	FlightTrainNumber string `json:"flight_train_number,omitempty"`
	DispatchCenter    string `json:"dispatch_center,omitempty"`
	Remarks           string `json:"remarks,omitempty"`
	Labels            string `json:"labels,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
	Method     string  `json:"extraction_method,omitempty"`
}

// Get returns the value of a canonical field.
func (r *Record) Get(f constants.Field) string {
	switch f {
	case constants.FieldCustomer:
		return r.Customer
	case constants.FieldBookedByName:
		return r.BookedByName
	case constants.FieldBookedByPhone:
		return r.BookedByPhone
	case constants.FieldBookedByEmail:
		return r.BookedByEmail
	case constants.FieldPassengerName:
		return r.PassengerName
	case constants.FieldPassengerPhone:
		return r.PassengerPhone
	case constants.FieldPassengerEmail:
		return r.PassengerEmail
	case constants.FieldFromLocation:
		return r.FromLocation
	case constants.FieldToLocation:
		return r.ToLocation
	case constants.FieldVehicleGroup:
		return r.VehicleGroup
	case constants.FieldDutyType:
		return r.DutyType
	case constants.FieldStartDate:
		return r.StartDate
	case constants.FieldEndDate:
		return r.EndDate
	case constants.FieldReportingTime:
		return r.ReportingTime
	case constants.FieldReportingAddress:
		return r.ReportingAddress
	case constants.FieldDropAddress:
		return r.DropAddress
	case constants.FieldFlightTrainNumber:
		return r.FlightTrainNumber
	case constants.FieldDispatchCenter:
		return r.DispatchCenter
	case constants.FieldRemarks:
		return r.Remarks
	case constants.FieldLabels:
		return r.Labels
	}
	return ""
}

// Set assigns the value of a canonical field. Unknown fields are ignored.
func (r *Record) Set(f constants.Field, v string) {
	v = strings.TrimSpace(v)
	switch f {
	case constants.FieldCustomer:
		r.Customer = v
	case constants.FieldBookedByName:
		r.BookedByName = v
	case constants.FieldBookedByPhone:
		r.BookedByPhone = v
	case constants.FieldBookedByEmail:
		r.BookedByEmail = v
	case constants.FieldPassengerName:
		r.PassengerName = v
	case constants.FieldPassengerPhone:
		r.PassengerPhone = v
	case constants.FieldPassengerEmail:
		r.PassengerEmail = v
	case constants.FieldFromLocation:
		r.FromLocation = v
	case constants.FieldToLocation:
		r.ToLocation = v
	case constants.FieldVehicleGroup:
		r.VehicleGroup = v
	case constants.FieldDutyType:
		r.DutyType = v
	case constants.FieldStartDate:
		r.StartDate = v
	case constants.FieldEndDate:
		r.EndDate = v
	case constants.FieldReportingTime:
		r.ReportingTime = v
	case constants.FieldReportingAddress:
		r.ReportingAddress = v
	case constants.FieldDropAddress:
		r.DropAddress = v
	case constants.FieldFlightTrainNumber:
		r.FlightTrainNumber = v
	case constants.FieldDispatchCenter:
		r.DispatchCenter = v
	case constants.FieldRemarks:
		r.Remarks = v
	case constants.FieldLabels:
		r.Labels = v
	}
}

// identityFields and tripFields back the viability rule.
var identityFields = []constants.Field{
	constants.FieldPassengerName,
	constants.FieldPassengerPhone,
	constants.FieldPassengerEmail,
}

var tripFields = []constants.Field{
	constants.FieldFromLocation,
	constants.FieldToLocation,
	constants.FieldStartDate,
	constants.FieldEndDate,
	constants.FieldReportingTime,
	constants.FieldReportingAddress,
	constants.FieldDropAddress,
}

// Viable reports whether the record carries at least one identity field or at
// least one trip field. Records that have neither are dropped before counting.
func (r *Record) Viable() bool {
	for _, f := range identityFields {
		if filled(r.Get(f)) {
			return true
		}
	}
	for _, f := range tripFields {
		if filled(r.Get(f)) {
			return true
		}
	}
	return false
}

func filled(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != constants.Placeholder
}

// Row returns the record as the twenty output columns in order, with unfilled
// fields written as the placeholder token.
func (r *Record) Row() []string {
	fields := constants.AllFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		v := strings.TrimSpace(r.Get(f))
		if v == "" {
			v = constants.Placeholder
		}
		out[i] = v
	}
	return out
}

// DropNonViable filters a record slice down to viable records, preserving order.
func DropNonViable(recs []Record) []Record {
	out := recs[:0:0]
	for _, r := range recs {
		if r.Viable() {
			out = append(out, r)
		}
	}
	return out
}
