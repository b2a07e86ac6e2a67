package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/lookup"
)

// freeMailDomains never imply a corporate G2G account.
var freeMailDomains = map[string]struct{}{
	"gmail.com": {}, "yahoo.com": {}, "yahoo.in": {}, "hotmail.com": {},
	"outlook.com": {}, "rediffmail.com": {},
}

var (
	nonDigitRe  = regexp.MustCompile(`\D`)
	timeRe      = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)?\b`)
	honorificRe = regexp.MustCompile(`(?i)\b(?:ms|mrs)\.?\s`)
	vipRe       = regexp.MustCompile(`(?i)\bvip\b`)
)

// lookupMissPenalty scales a record's confidence down once per unresolved
// lookup.
const lookupMissPenalty = 0.9

// Validator normalizes every extracted record independently: phones, times,
// lookups, duty code derivation, labels, defaults. Never fatal; misses pass
// the raw value through at reduced confidence.
type Validator struct {
	logger *slog.Logger
	tables *lookup.Tables
}

func NewValidator(tables *lookup.Tables, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = lookup.Defaults()
	}
	return &Validator{logger: logger, tables: tables}
}

func (v *Validator) Name() string { return StageValidate }

func (v *Validator) Process(ctx context.Context, content IntakeContent, sc *StageContext) StageResult {
	start := time.Now()

	prior := sc.priorRecords

	misses := 0
	out := make([]booking.Record, len(prior))
	for i, rec := range prior {
		out[i] = v.validateRecord(rec, content)
		if out[i].Confidence < rec.Confidence {
			misses++
		}
	}

	res := StageResult{
		Stage:      StageValidate,
		Success:    true,
		Records:    out,
		Confidence: recordSetConfidence(out),
		Elapsed:    time.Since(start),
	}
	if misses > 0 {
		res.ErrorKind = KindLookupMiss
		res.Metadata = map[string]string{"records_with_misses": strconv.Itoa(misses)}
	}
	v.logger.Info("pipeline.validate.ok",
		"run_id", sc.RunID,
		"records", len(out),
		"records_with_misses", misses,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res
}

// validateRecord applies the full business-rule set to one record. The input
// is copied; the validator owns what it returns.
func (v *Validator) validateRecord(rec booking.Record, content IntakeContent) booking.Record {
	misses := 0

	rec.BookedByPhone = normalizePhone(rec.BookedByPhone)
	rec.PassengerPhone = normalizePhone(rec.PassengerPhone)

	if rec.ReportingTime != "" {
		rounded, changed, ok := roundToQuarterHour(rec.ReportingTime)
		if ok {
			if changed {
				rec.Remarks = appendRemark(rec.Remarks,
					fmt.Sprintf("Reporting time adjusted from %s to %s", rec.ReportingTime, rounded))
			}
			rec.ReportingTime = rounded
		}
	}

	policy, corporateMiss := v.resolveCorporate(&rec)
	if corporateMiss {
		misses++
	}

	if rec.FromLocation != "" {
		if city, ok := v.tables.City(rec.FromLocation); ok {
			rec.FromLocation = city
		} else {
			misses++
		}
	}
	if rec.ToLocation != "" {
		if city, ok := v.tables.City(rec.ToLocation); ok {
			rec.ToLocation = city
		} else {
			misses++
		}
	}
	if rec.DispatchCenter == "" {
		if center, ok := v.tables.DispatchCenter(rec.FromLocation); ok {
			rec.DispatchCenter = center
		}
	}

	if rec.VehicleGroup != "" {
		if vehicle, ok := v.tables.Vehicle(rec.VehicleGroup); ok {
			rec.VehicleGroup = vehicle
		} else {
			misses++
		}
	}

	rec.DutyType = v.deriveDutyCode(rec, content, policy)

	if rec.EndDate == "" {
		rec.EndDate = rec.StartDate
	}

	rec.Labels = deriveLabels(rec, content.Text)

	applyDefaults(&rec)

	for i := 0; i < misses; i++ {
		rec.Confidence *= lookupMissPenalty
	}
	if rec.Confidence < 0.1 {
		rec.Confidence = 0.1
	}
	return rec
}

// resolveCorporate fills the customer name and picks the dispatch policy.
// The booker's mail domain stands in when no corporate pattern matches.
func (v *Validator) resolveCorporate(rec *booking.Record) (constants.DispatchPolicy, bool) {
	probe := rec.Customer
	if probe == "" {
		probe = rec.BookedByEmail
	}
	if corp, ok := v.tables.Corporate(probe); ok {
		rec.Customer = corp.Name
		return corp.Policy, false
	}

	domain := mailDomain(rec.BookedByEmail)
	if domain != "" {
		if _, free := freeMailDomains[domain]; !free {
			return constants.PolicyG2G, rec.Customer != ""
		}
	}
	return constants.PolicyP2P, rec.Customer != ""
}

// deriveDutyCode crosses the detected service pattern with the corporate
// policy.
func (v *Validator) deriveDutyCode(rec booking.Record, content IntakeContent, policy constants.DispatchPolicy) string {
	probe := rec.DutyType
	if probe == "" {
		probe = content.Text
	}
	s := readSignals(probe)

	var pkg constants.DutyPackage
	switch {
	case s.outstation > 0:
		kms := v.tables.RouteDistance(rec.FromLocation, rec.ToLocation)
		pkg = constants.DutyPackage(fmt.Sprintf("Outstation %dKMS", kms))
	case s.fullDay > 0:
		pkg = constants.PackageFullDay
	case s.transfers > 0 || s.dropEvents > 0:
		pkg = constants.PackageHalfDay
	default:
		pkg = constants.PackageFullDay
	}
	return constants.DutyCode(policy, pkg)
}

// deriveLabels assigns at most the two fixed labels, under narrow triggers
// only: an honorific for LadyGuest, an explicit VIP mention for VIP.
func deriveLabels(rec booking.Record, text string) string {
	var labels []string
	if honorificRe.MatchString(rec.PassengerName) {
		labels = append(labels, "LadyGuest")
	}
	if vipRe.MatchString(text) || vipRe.MatchString(rec.Remarks) {
		labels = append(labels, "VIP")
	}
	if len(labels) == 0 {
		return rec.Labels
	}
	return strings.Join(labels, ", ")
}

func applyDefaults(rec *booking.Record) {
	if rec.BookedByName == "" {
		rec.BookedByName = "Travel Coordinator"
	}
	if rec.PassengerName == "" {
		rec.PassengerName = "Guest"
	}
	if rec.VehicleGroup == "" {
		rec.VehicleGroup = "Swift Dzire"
	}
	if rec.ReportingTime == "" {
		rec.ReportingTime = "09:00"
	}
	if rec.DispatchCenter == "" {
		rec.DispatchCenter = "Central Dispatch"
	}
}

// normalizePhone strips separators and country prefixes down to the local
// ten digits. Anything else passes through untouched.
func normalizePhone(raw string) string {
	if raw == "" {
		return raw
	}
	digits := nonDigitRe.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 13 && strings.HasPrefix(digits, "091"):
		return digits[3:]
	}
	return raw
}

// roundToQuarterHour snaps a time mention to dispatch slots: minutes <=7 go
// to :00, <=22 to :15, <=37 to :30, <=52 to :45, later spills to the next
// hour.
func roundToQuarterHour(raw string) (string, bool, bool) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return "", false, false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", false, false
		}
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	var rounded int
	switch {
	case minute <= 7:
		rounded = 0
	case minute <= 22:
		rounded = 15
	case minute <= 37:
		rounded = 30
	case minute <= 52:
		rounded = 45
	default:
		rounded = 0
		hour = (hour + 1) % 24
	}
	out := fmt.Sprintf("%02d:%02d", hour, rounded)
	return out, rounded != minute, true
}

func appendRemark(remarks, note string) string {
	if remarks == "" {
		return note
	}
	return remarks + "; " + note
}

func mailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}
