package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/llm"
)

// maxBookingCount caps rule-derived counts; anything larger is OCR noise.
const maxBookingCount = 10

var (
	reFullDay    = regexp.MustCompile(`(?i)8\s*/\s*80|8\s*h(?:ou)?rs?\b|80\s*kms?\b|full\s*day|whole\s*day|at\s+disposal|local\s+use`)
	reTransfer   = regexp.MustCompile(`(?i)4\s*/\s*40|4\s*h(?:ou)?rs?\b|40\s*kms?\b|one\s*way|airport\s+transfer`)
	reOutstation = regexp.MustCompile(`(?i)outstation|out\s+station|intercity|inter-city`)

	reDropEvent   = regexp.MustCompile(`(?i)\bdrop(?:ped)?\b\s*(?:at|to|in|near|[-:@])`)
	reDropCount   = regexp.MustCompile(`(?i)\b(\d+|two|three|four|five)\s+drops\b`)
	reAlternate   = regexp.MustCompile(`(?i)alternate\s+days?|every\s+other\s+day|non[\s-]?consecutive`)
	reConsecutive = regexp.MustCompile(`(?i)consecutive|daily|every\s*day|for\s+\d+\s+days|till\s+\d|continuous`)
	reRoundTrip   = regexp.MustCompile(`(?i)round\s*trip|same\s+day\s+(?:return|back)|and\s+(?:same\s+day\s+)?back|return\s+(?:on\s+the\s+)?same\s+day`)
	reEnumerated  = regexp.MustCompile(`(?i)\b(?:cab|car|vehicle|booking)\s*-?\s*(\d+)\b`)

	reDateToken = regexp.MustCompile(`(?i)\b\d{1,2}[-/.]\d{1,2}(?:[-/.]\d{2,4})?\b|\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

	vehicleWords = []string{"dzire", "crysta", "innova", "ertiga", "swift", "sedan", "suv", "hatchback"}

	numberWords = map[string]int{"two": 2, "three": 3, "four": 4, "five": 5}
)

// signals are the pattern counts one content string reduces to. Computed
// once, consumed by every rule.
type signals struct {
	fullDay      int
	transfers    int
	outstation   int
	dropEvents   int
	vehicles     int
	maxEnumIndex int
	dates        int
	alternate    bool
	consecutive  bool
	roundTrip    bool
}

func readSignals(content string) signals {
	s := signals{
		fullDay:     len(reFullDay.FindAllString(content, -1)),
		transfers:   len(reTransfer.FindAllString(content, -1)),
		outstation:  len(reOutstation.FindAllString(content, -1)),
		alternate:   reAlternate.MatchString(content),
		consecutive: reConsecutive.MatchString(content),
		roundTrip:   reRoundTrip.MatchString(content),
	}

	s.dropEvents = len(reDropEvent.FindAllString(content, -1))
	if m := reDropCount.FindStringSubmatch(content); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			s.dropEvents = n
		} else if n, ok := numberWords[strings.ToLower(m[1])]; ok {
			s.dropEvents = n
		}
	}

	lower := strings.ToLower(content)
	for _, w := range vehicleWords {
		if strings.Contains(lower, w) {
			s.vehicles++
		}
	}
	// "swift dzire" is one vehicle, not a change of car
	if s.vehicles == 2 && strings.Contains(lower, "swift dzire") {
		s.vehicles = 1
	}
	if s.vehicles == 2 && strings.Contains(lower, "innova crysta") {
		s.vehicles = 1
	}

	for _, m := range reEnumerated.FindAllStringSubmatch(content, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > s.maxEnumIndex {
			s.maxEnumIndex = n
		}
	}

	seen := map[string]struct{}{}
	for _, d := range reDateToken.FindAllString(content, -1) {
		seen[strings.ToLower(strings.Join(strings.Fields(d), " "))] = struct{}{}
	}
	s.dates = len(seen)
	return s
}

func (s signals) dutyTag() string {
	switch {
	case s.outstation > 0:
		return "outstation"
	case s.fullDay > 0:
		return "8hr_80kms"
	case s.dropEvents > 0 || s.transfers > 0:
		return "drop"
	}
	return "unknown"
}

// rule is one entry of the ordered classification cascade. The first rule
// whose condition holds wins.
type rule struct {
	name  string
	apply func(s signals) (llm.Classification, bool)
}

var classificationRules = []rule{
	{
		// several drop events on the same day, one booking per drop
		name: "multiple_drops",
		apply: func(s signals) (llm.Classification, bool) {
			if s.dropEvents < 2 {
				return llm.Classification{}, false
			}
			return multi(s.dropEvents, 0.85, fmt.Sprintf("%d drop events detected", s.dropEvents)), true
		},
	},
	{
		// enumerated records ("Cab 1".."Cab 4") straight from flattened tables
		name: "enumerated_records",
		apply: func(s signals) (llm.Classification, bool) {
			if s.maxEnumIndex < 2 {
				return llm.Classification{}, false
			}
			return multi(s.maxEnumIndex, 0.9, fmt.Sprintf("records enumerated up to index %d", s.maxEnumIndex)), true
		},
	},
	{
		// a full-day package on alternate days is one booking per day
		name: "full_day_alternate_days",
		apply: func(s signals) (llm.Classification, bool) {
			if s.fullDay == 0 || !s.alternate {
				return llm.Classification{}, false
			}
			count := s.dates
			if count < 2 {
				count = 2
			}
			return multi(count, 0.9, "full-day package on alternate days"), true
		},
	},
	{
		// a car-type change inside the range splits the booking
		name: "vehicle_change",
		apply: func(s signals) (llm.Classification, bool) {
			if s.vehicles < 2 {
				return llm.Classification{}, false
			}
			return multi(s.vehicles, 0.85, "vehicle type changes during the period"), true
		},
	},
	{
		// several point transfers
		name: "multiple_transfers",
		apply: func(s signals) (llm.Classification, bool) {
			if s.transfers < 2 {
				return llm.Classification{}, false
			}
			return multi(s.transfers, 0.8, fmt.Sprintf("%d point transfers requested", s.transfers)), true
		},
	},
	{
		// A to B and back to A, same passenger, one vehicle
		name: "round_trip",
		apply: func(s signals) (llm.Classification, bool) {
			if !s.roundTrip {
				return llm.Classification{}, false
			}
			return single(0.9, "round trip for the same passenger"), true
		},
	},
	{
		// full-day or outstation duty across consecutive days spans one booking
		name: "consecutive_days_span",
		apply: func(s signals) (llm.Classification, bool) {
			if (s.fullDay == 0 && s.outstation == 0) || !s.consecutive {
				return llm.Classification{}, false
			}
			return single(0.9, "continuous duty across consecutive days"), true
		},
	},
	{
		// one point transfer
		name: "single_transfer",
		apply: func(s signals) (llm.Classification, bool) {
			if s.transfers != 1 && s.dropEvents != 1 {
				return llm.Classification{}, false
			}
			return single(0.8, "single point transfer"), true
		},
	},
}

// RuleClassifier is the keyword cascade used when the oracle is unavailable
// and as a cheap pre-check. Pure and deterministic.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify runs the ordered cascade; when no rule fires it falls back to
// counting distinct date mentions at low confidence.
func (rc *RuleClassifier) Classify(content string) llm.Classification {
	s := readSignals(content)

	for _, r := range classificationRules {
		if cls, ok := r.apply(s); ok {
			cls.DutyTypeTag = s.dutyTag()
			return cls
		}
	}

	// date-count fallback
	cls := single(0.6, "no classification rule matched; defaulted on date count")
	if s.dates >= 2 {
		cls = multi(s.dates, 0.6, fmt.Sprintf("%d distinct dates mentioned", s.dates))
	}
	cls.DutyTypeTag = s.dutyTag()
	return cls
}

func multi(count int, confidence float64, reasoning string) llm.Classification {
	if count < 2 {
		count = 2
	}
	if count > maxBookingCount {
		count = maxBookingCount
	}
	return llm.Classification{
		BookingType:  string(constants.BookingMultiple),
		BookingCount: count,
		Confidence:   confidence,
		Reasoning:    reasoning,
	}
}

func single(confidence float64, reasoning string) llm.Classification {
	return llm.Classification{
		BookingType:  string(constants.BookingSingle),
		BookingCount: 1,
		Confidence:   confidence,
		Reasoning:    reasoning,
	}
}
