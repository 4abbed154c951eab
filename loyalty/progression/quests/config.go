package quests

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

// ErrInvalidConfig marks a quest whose validation config cannot be used.
var ErrInvalidConfig = errors.New("invalid quest config")

// Config is the decoded validation config of one quest type.
type Config interface {
	QuestType() string
}

// OneOffConfig completes on a cumulative order count or on lifetime XP.
type OneOffConfig struct {
	TargetCount int64 `json:"targetCount"`
	TargetXP    int64 `json:"targetXP"`
}

// CollectionConfig either matches a single order (MinOrderValue, PromoName)
// or counts distinct item names up to TargetCount.
type CollectionConfig struct {
	TargetCount   int64            `json:"targetCount"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue"`
	PromoName     string           `json:"promoName"`
	Items         []string         `json:"items"`
}

// TimeConfig matches events whose local time of day is in [Start, End).
type TimeConfig struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	start, end time.Duration
}

// StreakConfig has two modes: TargetCount events inside a rolling Timeframe,
// or an event on one of Days.
type StreakConfig struct {
	TargetCount int64    `json:"targetCount"`
	Timeframe   string   `json:"timeframe"`
	Days        []string `json:"days"`

	window   time.Duration
	weekdays map[time.Weekday]bool
}

// SocialConfig counts confirmed referrals.
type SocialConfig struct {
	TargetCount int64 `json:"targetCount"`
}

// SpendConfig completes once lifetime spend reaches SpendAmount.
type SpendConfig struct {
	SpendAmount decimal.Decimal `json:"spendAmount"`
}

func (*OneOffConfig) QuestType() string     { return models.QuestTypeOneOff }
func (*CollectionConfig) QuestType() string { return models.QuestTypeCollection }
func (*TimeConfig) QuestType() string       { return models.QuestTypeTime }
func (*StreakConfig) QuestType() string     { return models.QuestTypeStreak }
func (*SocialConfig) QuestType() string     { return models.QuestTypeSocial }
func (*SpendConfig) QuestType() string      { return models.QuestTypeSpend }

// ParseConfig decodes raw into the variant for questType and validates it.
// Unknown keys are rejected.
func ParseConfig(questType string, raw map[string]interface{}) (Config, error) {
	var cfg Config
	switch questType {
	case models.QuestTypeOneOff:
		cfg = &OneOffConfig{}
	case models.QuestTypeCollection:
		cfg = &CollectionConfig{}
	case models.QuestTypeTime:
		cfg = &TimeConfig{}
	case models.QuestTypeStreak:
		cfg = &StreakConfig{}
	case models.QuestTypeSocial:
		cfg = &SocialConfig{}
	case models.QuestTypeSpend:
		cfg = &SpendConfig{}
	default:
		return nil, fmt.Errorf("%w: unknown quest type %q", ErrInvalidConfig, questType)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, questType, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, questType, err)
	}
	return cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	}
	return nil, fmt.Errorf("cannot decode %s into a decimal", from)
}

func validate(cfg Config) error {
	switch c := cfg.(type) {
	case *OneOffConfig:
		if (c.TargetCount > 0) == (c.TargetXP > 0) {
			return errors.New("exactly one of targetCount and targetXP must be positive")
		}
		if c.TargetCount < 0 || c.TargetXP < 0 {
			return errors.New("targets must not be negative")
		}

	case *CollectionConfig:
		single := c.MinOrderValue != nil || c.PromoName != ""
		switch {
		case c.TargetCount < 0:
			return errors.New("targetCount must not be negative")
		case c.TargetCount > 0 && single:
			return errors.New("targetCount cannot be combined with minOrderValue or promoName")
		case c.TargetCount == 0 && !single:
			return errors.New("one of targetCount, minOrderValue or promoName is required")
		case c.MinOrderValue != nil && c.MinOrderValue.IsNegative():
			return errors.New("minOrderValue must not be negative")
		case len(c.Items) > 0 && c.TargetCount == 0:
			return errors.New("items requires targetCount")
		}

	case *TimeConfig:
		start, err := parseClock(c.StartTime)
		if err != nil {
			return fmt.Errorf("startTime: %w", err)
		}
		end, err := parseClock(c.EndTime)
		if err != nil {
			return fmt.Errorf("endTime: %w", err)
		}
		if start == end {
			return errors.New("startTime and endTime must differ")
		}
		c.start, c.end = start, end

	case *StreakConfig:
		rolling := c.Timeframe != ""
		weekly := len(c.Days) > 0
		switch {
		case rolling && weekly:
			return errors.New("timeframe and days are mutually exclusive")
		case !rolling && !weekly:
			return errors.New("one of timeframe or days is required")
		case rolling:
			if c.TargetCount <= 0 {
				return errors.New("timeframe requires a positive targetCount")
			}
			window, err := parseTimeframe(c.Timeframe)
			if err != nil {
				return err
			}
			c.window = window
		default:
			if c.TargetCount != 0 {
				return errors.New("targetCount is not used with days")
			}
			c.weekdays = make(map[time.Weekday]bool, len(c.Days))
			for _, d := range c.Days {
				wd, err := parseWeekday(d)
				if err != nil {
					return err
				}
				c.weekdays[wd] = true
			}
		}

	case *SocialConfig:
		if c.TargetCount < 0 {
			return errors.New("targetCount must not be negative")
		}
		if c.TargetCount == 0 {
			c.TargetCount = 1
		}

	case *SpendConfig:
		if !c.SpendAmount.IsPositive() {
			return errors.New("spendAmount must be positive")
		}
	}
	return nil
}

// parseClock parses "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// parseTimeframe accepts Go durations plus a "d" suffix for days, e.g. "7d".
func parseTimeframe(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var (
		d   time.Duration
		err error
	)
	if strings.HasSuffix(s, "d") {
		var days int
		days, err = strconv.Atoi(strings.TrimSuffix(s, "d"))
		d = time.Duration(days) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid timeframe %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeframe %q must be positive", s)
	}
	return d, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[name]; ok {
		return wd, nil
	}
	if len(name) == 3 {
		for full, wd := range weekdayNames {
			if strings.HasPrefix(full, name) {
				return wd, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
