// Package itu loads the reference traffic and subscription time series
// and derives, per country, the monthly mobile-broadband traffic per
// subscription of the latest year both series report.
package itu

import (
	"fmt"
	"io/ioutil"

	"github.com/jszwec/csvutil"
	log "github.com/sirupsen/logrus"
)

// SubscriptionRow is one year of active mobile-broadband subscriptions
// of one country.
type SubscriptionRow struct {
	Entity string  `csv:"entityName"`
	ISO3   string  `csv:"entityIso"`
	Year   int     `csv:"dataYear"`
	Value  float64 `csv:"dataValue"`
}

// TrafficRow is one year of in-country mobile-broadband internet
// traffic of one country, in exabytes.
type TrafficRow struct {
	Entity string  `csv:"entityName"`
	ISO3   string  `csv:"entityIso"`
	Year   int     `csv:"dataYear"`
	Value  float64 `csv:"dataValue"`
}

// TrafficPerSub is the derived figure: monthly traffic per active
// subscription in gigabytes, for one country's latest usable year.
type TrafficPerSub struct {
	Entity        string
	ISO3          string
	Year          int
	Subscriptions float64
	TrafficEB     float64
	GBPerSubMonth float64
}

// TrafficPerSubscription merges the two series on (entity, year), drops
// rows where either value is zero and keeps each entity's latest
// remaining year. Traffic arrives in exabytes; the result is
// GB/subscription/month.
func TrafficPerSubscription(subs []SubscriptionRow, traffic []TrafficRow) []TrafficPerSub {
	type key struct {
		entity string
		year   int
	}
	trafficByKey := make(map[key]TrafficRow, len(traffic))
	for _, t := range traffic {
		trafficByKey[key{t.Entity, t.Year}] = t
	}

	latest := make(map[string]TrafficPerSub)
	order := make([]string, 0)
	for _, s := range subs {
		t, ok := trafficByKey[key{s.Entity, s.Year}]
		if !ok || s.Value == 0 || t.Value == 0 {
			continue
		}
		row := TrafficPerSub{
			Entity:        s.Entity,
			ISO3:          s.ISO3,
			Year:          s.Year,
			Subscriptions: s.Value,
			TrafficEB:     t.Value,
			GBPerSubMonth: t.Value * 1024 * 1024 * 1024 / s.Value / 12,
		}
		prev, seen := latest[s.Entity]
		if !seen {
			order = append(order, s.Entity)
		}
		if !seen || row.Year > prev.Year {
			latest[s.Entity] = row
		}
	}

	out := make([]TrafficPerSub, 0, len(order))
	for _, e := range order {
		out = append(out, latest[e])
	}
	return out
}

// Reference is the per-country lookup the capacity model consumes.
type Reference struct {
	byISO3 map[string]TrafficPerSub
}

// NewReference builds the lookup from the merged latest-year rows.
func NewReference(rows []TrafficPerSub) *Reference {
	m := make(map[string]TrafficPerSub, len(rows))
	for _, r := range rows {
		if _, ok := m[r.ISO3]; !ok {
			m[r.ISO3] = r
		}
	}
	return &Reference{byISO3: m}
}

// UserMonthlyGB returns the monthly data volume per subscription in GB
// and its data year for a country. A missing country is a configuration
// error: the run cannot start without a demand figure.
func (r *Reference) UserMonthlyGB(iso3 string) (float64, int, error) {
	row, ok := r.byISO3[iso3]
	if !ok {
		return 0, 0, fmt.Errorf("itu: no traffic data for country %q", iso3)
	}
	return row.GBPerSubMonth, row.Year, nil
}

// Load reads the two reference CSVs and builds the country lookup.
func Load(subscriptionFile, trafficFile string) (*Reference, error) {
	var subs []SubscriptionRow
	if err := loadCSV(subscriptionFile, &subs); err != nil {
		return nil, fmt.Errorf("itu: loading subscriptions: %v", err)
	}
	var traffic []TrafficRow
	if err := loadCSV(trafficFile, &traffic); err != nil {
		return nil, fmt.Errorf("itu: loading traffic: %v", err)
	}
	rows := TrafficPerSubscription(subs, traffic)
	log.Debugf("itu: %d countries with usable traffic data", len(rows))
	return NewReference(rows), nil
}

func loadCSV(fname string, out interface{}) error {
	raw, err := ioutil.ReadFile(fname)
	if err != nil {
		return err
	}
	return csvutil.Unmarshal(raw, out)
}
