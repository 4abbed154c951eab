package quests

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/shopspring/decimal"
)

// evalInput is the state a validator sees for one event. activity already
// includes the event being processed.
type evalInput struct {
	event    Event
	order    *OrderCompleted
	ledger   *models.UserLedger
	activity *models.UserActivity
	loc      *time.Location
}

// verdict is a validator result. changed means progress must be saved.
type verdict struct {
	done    bool
	changed bool
}

// relevant reports whether an event can move the quest at all. Cumulative
// quests run on every event so they catch up once unlocked.
func relevant(cfg Config, in evalInput) bool {
	switch c := cfg.(type) {
	case *CollectionConfig, *TimeConfig, *StreakConfig:
		return in.order != nil
	case *OneOffConfig:
		return c.TargetXP > 0 || in.activity.OrderCount > 0
	case *SocialConfig:
		return in.activity.ReferralCount > 0
	case *SpendConfig:
		return in.activity.LifetimeSpend.IsPositive()
	}
	return false
}

// evaluate dispatches on the config variant and mutates progress in place.
func evaluate(q *Quest, p *models.UserQuestProgress, in evalInput) verdict {
	switch c := q.Config.(type) {
	case *OneOffConfig:
		return evalOneOff(c, p, in)
	case *CollectionConfig:
		return evalCollection(c, p, in)
	case *TimeConfig:
		return evalTime(c, p, in)
	case *StreakConfig:
		return evalStreak(c, p, in)
	case *SocialConfig:
		return evalCounter(p, in.activity.ReferralCount, c.TargetCount)
	case *SpendConfig:
		return evalSpend(c, p, in)
	default:
		slog.Error("Quest has no validator, skipping",
			slog.String("type", "error"),
			slog.String("quest_id", q.Definition.QuestID),
			slog.String("quest_type", q.Definition.Type))
		return verdict{}
	}
}

func evalOneOff(c *OneOffConfig, p *models.UserQuestProgress, in evalInput) verdict {
	if c.TargetXP > 0 {
		return evalCounter(p, in.ledger.Points, c.TargetXP)
	}
	return evalCounter(p, in.activity.OrderCount, c.TargetCount)
}

// evalCounter mirrors a lifetime counter into progress. The stored counter
// never decreases.
func evalCounter(p *models.UserQuestProgress, value, target int64) verdict {
	v := decimal.NewFromInt(value)
	changed := false
	if v.GreaterThan(p.Counter) {
		p.Counter = v
		changed = true
	}
	return verdict{done: p.Counter.GreaterThanOrEqual(decimal.NewFromInt(target)), changed: changed}
}

func evalCollection(c *CollectionConfig, p *models.UserQuestProgress, in evalInput) verdict {
	order := in.order
	if c.TargetCount == 0 {
		if c.MinOrderValue != nil && order.OrderTotal.LessThan(*c.MinOrderValue) {
			return verdict{}
		}
		if c.PromoName != "" && !strings.EqualFold(strings.TrimSpace(order.PromoName), strings.TrimSpace(c.PromoName)) {
			return verdict{}
		}
		p.Counter = decimal.NewFromInt(1)
		return verdict{done: true, changed: true}
	}

	changed := false
	for _, item := range order.Items {
		name := normalizeItem(item.Name)
		if !c.qualifies(name) || p.Metadata.HasItem(name) {
			continue
		}
		p.Metadata.Items = append(p.Metadata.Items, name)
		changed = true
	}
	if changed {
		sort.Strings(p.Metadata.Items)
		p.Counter = decimal.NewFromInt(int64(len(p.Metadata.Items)))
	}
	return verdict{done: int64(len(p.Metadata.Items)) >= c.TargetCount, changed: changed}
}

func (c *CollectionConfig) qualifies(name string) bool {
	if len(c.Items) == 0 {
		return true
	}
	for _, allowed := range c.Items {
		if normalizeItem(allowed) == name {
			return true
		}
	}
	return false
}

func normalizeItem(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func evalTime(c *TimeConfig, p *models.UserQuestProgress, in evalInput) verdict {
	if !c.Contains(in.event.OccurredAt().In(in.loc)) {
		return verdict{}
	}
	p.Counter = decimal.NewFromInt(1)
	return verdict{done: true, changed: true}
}

// Contains reports whether t's time of day is in [start, end). Windows with
// end before start wrap past midnight.
func (c *TimeConfig) Contains(t time.Time) bool {
	h, m, s := t.Clock()
	tod := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
	if c.start < c.end {
		return tod >= c.start && tod < c.end
	}
	return tod >= c.start || tod < c.end
}

func evalStreak(c *StreakConfig, p *models.UserQuestProgress, in evalInput) verdict {
	at := in.event.OccurredAt().In(in.loc)
	if c.weekdays != nil {
		if !c.weekdays[at.Weekday()] {
			return verdict{}
		}
		p.Counter = decimal.NewFromInt(1)
		return verdict{done: true, changed: true}
	}

	events := append(p.Metadata.Events, at.UTC())
	sort.Slice(events, func(i, j int) bool { return events[i].Before(events[j]) })

	latest := events[len(events)-1]
	kept := events[:0]
	for _, e := range events {
		if latest.Sub(e) < c.window {
			kept = append(kept, e)
		}
	}
	p.Metadata.Events = kept
	start := kept[0]
	p.WindowStart = &start
	// Counter records the best window seen; it never drops as events age out.
	if n := decimal.NewFromInt(int64(len(kept))); n.GreaterThan(p.Counter) {
		p.Counter = n
	}

	return verdict{done: int64(len(kept)) >= c.TargetCount, changed: true}
}

func evalSpend(c *SpendConfig, p *models.UserQuestProgress, in evalInput) verdict {
	changed := false
	if in.activity.LifetimeSpend.GreaterThan(p.Counter) {
		p.Counter = in.activity.LifetimeSpend
		changed = true
	}
	return verdict{done: p.Counter.GreaterThanOrEqual(c.SpendAmount), changed: changed}
}
