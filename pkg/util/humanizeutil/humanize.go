// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package humanizeutil

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

// IBytes is an int64 version of go-humanize's IBytes.
func IBytes(value int64) string {
	if value < 0 {
		return fmt.Sprintf("-%s", humanize.IBytes(uint64(-value)))
	}
	return humanize.IBytes(uint64(value))
}

// Count formats an integer count with thousands separators.
func Count(value int64) string {
	return humanize.Comma(value)
}

// Rows formats a row estimate. Estimates below 10000 are printed exactly,
// larger ones with an SI suffix.
func Rows(value float64) string {
	if math.Abs(value) < 10000 {
		return humanize.Comma(int64(math.Round(value)))
	}
	return strings.ReplaceAll(humanize.SIWithDigits(value, 1, ""), " ", "")
}

// durationSteps maps an upper bound to the rounding applied below it.
var durationSteps = []struct {
	below, round time.Duration
}{
	{time.Millisecond, time.Microsecond},
	{time.Second, time.Millisecond},
	{time.Minute, 100 * time.Millisecond},
}

// Duration renders a planning duration with at most microsecond precision:
// 123456ns is "123µs", 12345678ns is "12ms" and 12345678912ns is "12.3s".
func Duration(val time.Duration) string {
	if val.Round(time.Microsecond) == 0 {
		return "0µs"
	}
	for _, step := range durationSteps {
		if val < step.below {
			return val.Round(step.round).String()
		}
	}
	return val.Round(time.Second).String()
}

// FractionValue is a flag.Value and pflag.Value holding a fraction in the
// range [0, 1]. It accepts plain numbers ("0.1") and percentages ("10%").
type FractionValue struct {
	val   *float64
	isSet bool
}

var _ flag.Value = &FractionValue{}
var _ pflag.Value = &FractionValue{}

// NewFractionValue creates a new pflag.Value bound to the specified float64
// variable.
func NewFractionValue(val *float64) *FractionValue {
	return &FractionValue{val: val}
}

// ParseFraction parses a fraction in the range [0, 1], given as a plain number
// or a percentage.
func ParseFraction(s string) (float64, error) {
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s, scale = strings.TrimSuffix(s, "%"), 100
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	v /= scale
	if v < 0 || v > 1 || math.IsNaN(v) {
		return 0, fmt.Errorf("fraction %s out of range [0, 1]", s)
	}
	return v, nil
}

// Set implements the flag.Value and pflag.Value interfaces.
func (f *FractionValue) Set(s string) error {
	v, err := ParseFraction(s)
	if err != nil {
		return err
	}
	*f.val = v
	f.isSet = true
	return nil
}

// Type implements the pflag.Value interface.
func (f *FractionValue) Type() string {
	return "fraction"
}

// String implements the flag.Value and pflag.Value interfaces.
func (f *FractionValue) String() string {
	if f.val == nil {
		return "0"
	}
	return strconv.FormatFloat(*f.val, 'g', -1, 64)
}

// IsSet returns true iff Set has successfully been called.
func (f *FractionValue) IsSet() bool {
	return f.isSet
}
