// Package resolver implements the default YAML 1.1 core schema: given a
// scalar's content (and any explicit tag), it decides which tag the
// scalar would carry if none were given explicitly, and converts the
// content to a Go value of the matching native type. It is grounded in
// the teacher library's internal/resolve package, restoring the
// sexagesimal (base-60) integer and float forms that package's comment
// calls out as "purposefully unsupported" but which a YAML 1.1-
// compliant core schema still recognizes.
package resolver

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Well-known tag URIs for the core schema.
const (
	NullTag   = "tag:yaml.org,2002:null"
	BoolTag   = "tag:yaml.org,2002:bool"
	IntTag    = "tag:yaml.org,2002:int"
	FloatTag  = "tag:yaml.org,2002:float"
	BinaryTag = "tag:yaml.org,2002:binary"
	TimestampTag = "tag:yaml.org,2002:timestamp"
	StrTag    = "tag:yaml.org,2002:str"
	SeqTag    = "tag:yaml.org,2002:seq"
	MapTag    = "tag:yaml.org,2002:map"
	OMapTag   = "tag:yaml.org,2002:omap"
	PairsTag  = "tag:yaml.org,2002:pairs"
	SetTag    = "tag:yaml.org,2002:set"
	MergeTag  = "tag:yaml.org,2002:merge"
	ValueTag  = "tag:yaml.org,2002:value"
)

var shortNames = map[string]string{
	NullTag: "!!null", BoolTag: "!!bool", IntTag: "!!int", FloatTag: "!!float",
	BinaryTag: "!!binary", TimestampTag: "!!timestamp", StrTag: "!!str",
	SeqTag: "!!seq", MapTag: "!!map", OMapTag: "!!omap", PairsTag: "!!pairs",
	SetTag: "!!set", MergeTag: "!!merge", ValueTag: "!!value",
}

// ShortTag abbreviates a tag:yaml.org,2002: URI to its "!!name" form,
// leaving any other tag unchanged.
func ShortTag(tag string) string {
	if s, ok := shortNames[tag]; ok {
		return s
	}
	return tag
}

// LongTag expands a "!!name" shorthand to its full tag:yaml.org,2002:
// URI, leaving any other tag (including already-long ones) unchanged.
func LongTag(tag string) string {
	if strings.HasPrefix(tag, "!!") {
		return "tag:yaml.org,2002:" + tag[2:]
	}
	return tag
}

var (
	boolValues = map[string]bool{
		"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
		"true": true, "True": true, "TRUE": true, "on": true, "On": true, "ON": true,
		"n": false, "N": false, "no": false, "No": false, "NO": false,
		"false": false, "False": false, "FALSE": false, "off": false, "Off": false, "OFF": false,
	}
	nullValues = map[string]bool{"": true, "~": true, "null": true, "Null": true, "NULL": true}
	nanValues  = map[string]bool{".nan": true, ".NaN": true, ".NAN": true}
	infValues  = map[string]int{
		".inf": 1, ".Inf": 1, ".INF": 1, "+.inf": 1, "+.Inf": 1, "+.INF": 1,
		"-.inf": -1, "-.Inf": -1, "-.INF": -1,
	}
	mergeValues = map[string]bool{"<<": true}

	intRe       = regexp.MustCompile(`^[-+]?(0b[0-1_]+|0x[0-9a-fA-F_]+|0o?[0-7_]+|(0|[1-9][0-9_]*))$`)
	sexagesimalIntRe = regexp.MustCompile(`^[-+]?[1-9][0-9_]*(:[0-5]?[0-9])+$`)
	floatRe     = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9][0-9_]*(\.[0-9_]*)?)([eE][-+]?[0-9]+)?$`)
	sexagesimalFloatRe = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(:[0-5]?[0-9])+\.[0-9_]*$`)

	timestampFormats = []string{
		"2006-1-2T15:4:5.999999999Z07:00",
		"2006-1-2t15:4:5.999999999Z07:00",
		"2006-1-2 15:4:5.999999999Z07:00",
		"2006-1-2",
	}
)

// Resolve determines the implicit tag and decoded value for a plain
// scalar's content. tag is "" when the caller wants the schema's best
// guess (the plain-scalar case); a caller may instead pass an explicit
// "!!name" or long tag.Resolve then converts in according to that tag.
func Resolve(tag, in string) (string, interface{}, error) {
	if tag != "" && tag != "!" {
		return resolveExplicit(LongTag(tag), in)
	}
	return resolveImplicit(in)
}

func resolveImplicit(in string) (string, interface{}, error) {
	if nullValues[in] {
		return NullTag, nil, nil
	}
	if b, ok := boolValues[in]; ok {
		return BoolTag, b, nil
	}
	if mergeValues[in] {
		return MergeTag, in, nil
	}
	if in == "=" {
		return ValueTag, in, nil
	}
	if nanValues[in] {
		return FloatTag, math.NaN(), nil
	}
	if sign, ok := infValues[in]; ok {
		if sign > 0 {
			return FloatTag, math.Inf(1), nil
		}
		return FloatTag, math.Inf(-1), nil
	}
	if intRe.MatchString(in) {
		v, err := parseInt(in)
		if err == nil {
			return IntTag, v, nil
		}
	}
	if sexagesimalIntRe.MatchString(in) {
		v, err := parseSexagesimalInt(in)
		if err == nil {
			return IntTag, v, nil
		}
	}
	if sexagesimalFloatRe.MatchString(in) {
		v, err := parseSexagesimalFloat(in)
		if err == nil {
			return FloatTag, v, nil
		}
	}
	if floatRe.MatchString(in) && strings.ContainsAny(in, ".eE") {
		v, err := strconv.ParseFloat(strings.ReplaceAll(in, "_", ""), 64)
		if err == nil {
			return FloatTag, v, nil
		}
	}
	if ts, ok := parseTimestamp(in); ok {
		return TimestampTag, ts, nil
	}
	return StrTag, in, nil
}

func resolveExplicit(tag, in string) (string, interface{}, error) {
	switch tag {
	case NullTag:
		return tag, nil, nil
	case BoolTag:
		b, ok := boolValues[in]
		if !ok {
			return tag, nil, fmt.Errorf("cannot resolve %q as %s", in, ShortTag(tag))
		}
		return tag, b, nil
	case IntTag:
		if v, err := parseInt(in); err == nil {
			return tag, v, nil
		}
		if v, err := parseSexagesimalInt(in); err == nil {
			return tag, v, nil
		}
		return tag, nil, fmt.Errorf("cannot resolve %q as %s", in, ShortTag(tag))
	case FloatTag:
		if nanValues[in] {
			return tag, math.NaN(), nil
		}
		if sign, ok := infValues[in]; ok {
			if sign > 0 {
				return tag, math.Inf(1), nil
			}
			return tag, math.Inf(-1), nil
		}
		if v, err := parseSexagesimalFloat(in); err == nil {
			return tag, v, nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(in, "_", ""), 64)
		if err != nil {
			return tag, nil, fmt.Errorf("cannot resolve %q as %s", in, ShortTag(tag))
		}
		return tag, v, nil
	case BinaryTag:
		data, err := base64.StdEncoding.DecodeString(strings.Map(func(r rune) rune {
			if r == '\n' || r == ' ' {
				return -1
			}
			return r
		}, in))
		if err != nil {
			return tag, nil, fmt.Errorf("cannot resolve %q as %s: %w", in, ShortTag(tag), err)
		}
		return tag, data, nil
	case TimestampTag:
		if ts, ok := parseTimestamp(in); ok {
			return tag, ts, nil
		}
		return tag, nil, fmt.Errorf("cannot resolve %q as %s", in, ShortTag(tag))
	case MergeTag, ValueTag, SeqTag, MapTag, OMapTag, PairsTag, SetTag:
		return tag, in, nil
	default:
		return tag, in, nil
	}
}

func parseInt(in string) (int64, error) {
	s := strings.ReplaceAll(in, "_", "")
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0b"):
		v, err = strconv.ParseUint(s[2:], 2, 64)
	case strings.HasPrefix(s, "0x"):
		v, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0o"):
		v, err = strconv.ParseUint(s[2:], 8, 64)
	case len(s) > 1 && s[0] == '0':
		v, err = strconv.ParseUint(s[1:], 8, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// parseSexagesimalInt parses the YAML 1.1 base-60 integer form, e.g.
// "1:10:30" meaning 1*3600 + 10*60 + 30.
func parseSexagesimalInt(in string) (int64, error) {
	s := strings.ReplaceAll(in, "_", "")
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	var v int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, err
		}
		v = v*60 + n
	}
	if neg {
		v = -v
	}
	return v, nil
}

// parseSexagesimalFloat parses the YAML 1.1 base-60 float form, e.g.
// "1:10:30.5".
func parseSexagesimalFloat(in string) (float64, error) {
	s := strings.ReplaceAll(in, "_", "")
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	var v float64
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		v = v*60 + n
	}
	if neg {
		v = -v
	}
	return v, nil
}

func parseTimestamp(in string) (time.Time, bool) {
	s := strings.TrimSpace(in)
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EncodeBase64 renders binary data the way a !!binary scalar's content
// is written: standard base64 on one line. Neither this function nor its
// callers fold it to a line width.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
