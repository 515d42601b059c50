package model

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// ValidateRule is one compiled per-field validation check (spec §4.5).
type ValidateRule struct {
	Kind  string
	Param string
}

var (
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	macRe      = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9][0-9\-. ()]{6,}[0-9]$`)
)

// parseValidateTag compiles the "validate" struct tag into a rule list
// plus an optional custom-validator method name (spec §4.5; the custom
// hook mirrors a model-level "custom" validator entry point).
func parseValidateTag(tag string) (rules []ValidateRule, custom string) {
	parts := tagParts(tag)
	for k, v := range parts {
		if k == "custom" {
			custom = v
			continue
		}
		rules = append(rules, ValidateRule{Kind: k, Param: v})
	}
	return rules, custom
}

// BeforeValidator lets a model run checks prior to per-field validation
// (spec §4.5 "Model-level validators run in two phases": before).
type BeforeValidator interface {
	ValidateBefore() []string
}

// AfterValidator lets a model run checks after per-field validation, the
// default phase (spec §4.5: after).
type AfterValidator interface {
	ValidateAfter() []string
}

// CustomFieldValidator is implemented by a model whose field declares
// `validate:"custom=MethodName"`. MethodName is recorded in
// FieldInfo.CustomValidator, but Validate always calls ValidateField for
// such a field; no method is looked up by that name.
type CustomFieldValidator interface {
	ValidateField(fieldName string, value any) error
}

// Validate runs every compiled field rule plus any before/after
// model-level validators for instance, accumulating every violation into
// a single aggregate *sqlmodel.Error rather than short-circuiting on the
// first (spec §4.5, §8.4 scenario 6).
func Validate(instance any) error {
	info, err := Compile(instance)
	if err != nil {
		return err
	}

	var fieldViolations []sqlmodel.FieldViolation
	var modelLevel []string

	if bv, ok := instance.(BeforeValidator); ok {
		modelLevel = append(modelLevel, bv.ValidateBefore()...)
	}

	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for _, f := range info.Fields {
		if len(f.ValidateRules) == 0 && f.CustomValidator == "" {
			continue
		}
		fv := fieldByIndex(v, f.structIndex)
		if !fv.IsValid() {
			continue
		}
		val := fv.Interface()
		isZero := fv.IsZero()

		for _, rule := range f.ValidateRules {
			if reason, fails := evalRule(rule, fv, val, isZero); fails {
				fieldViolations = append(fieldViolations, sqlmodel.FieldViolation{
					Field: f.FieldName, Reason: reason,
				})
			}
		}

		if f.CustomValidator != "" {
			if cv, ok := instance.(CustomFieldValidator); ok {
				if err := cv.ValidateField(f.FieldName, val); err != nil {
					fieldViolations = append(fieldViolations, sqlmodel.FieldViolation{
						Field: f.FieldName, Reason: err.Error(),
					})
				}
			}
		}
	}

	if av, ok := instance.(AfterValidator); ok {
		modelLevel = append(modelLevel, av.ValidateAfter()...)
	}

	if len(fieldViolations) == 0 && len(modelLevel) == 0 {
		return nil
	}
	return sqlmodel.NewValidationError(info.GoType.Name(), fieldViolations, modelLevel)
}

func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	cur := v
	for _, i := range index {
		if cur.Kind() == reflect.Ptr {
			if cur.IsNil() {
				return reflect.Value{}
			}
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct || i >= cur.NumField() {
			return reflect.Value{}
		}
		cur = cur.Field(i)
	}
	return cur
}

// evalRule applies one compiled rule against a field's value, returning
// a human-readable failure reason when the rule fails.
func evalRule(rule ValidateRule, fv reflect.Value, val any, isZero bool) (reason string, fails bool) {
	switch rule.Kind {
	case "required":
		if isZero {
			return "is required", true
		}
		return "", false

	case "min":
		n, ok := toFloat(val)
		if !ok {
			return "", false
		}
		min, _ := strconv.ParseFloat(rule.Param, 64)
		if n < min {
			return fmt.Sprintf("must be >= %s", rule.Param), true
		}

	case "max":
		n, ok := toFloat(val)
		if !ok {
			return "", false
		}
		max, _ := strconv.ParseFloat(rule.Param, 64)
		if n > max {
			return fmt.Sprintf("must be <= %s", rule.Param), true
		}

	case "multiple_of":
		n, ok := toFloat(val)
		if !ok {
			return "", false
		}
		step, _ := strconv.ParseFloat(rule.Param, 64)
		if step != 0 {
			quotient := n / step
			if quotient != float64(int64(quotient)) {
				return fmt.Sprintf("must be a multiple of %s", rule.Param), true
			}
		}

	case "min_length":
		s, ok := val.(string)
		if !ok {
			return "", false
		}
		n, _ := strconv.Atoi(rule.Param)
		if len(s) < n {
			return fmt.Sprintf("must be at least %d characters", n), true
		}

	case "max_length":
		s, ok := val.(string)
		if !ok {
			return "", false
		}
		n, _ := strconv.Atoi(rule.Param)
		if len(s) > n {
			return fmt.Sprintf("must be at most %d characters", n), true
		}

	case "pattern":
		s, ok := val.(string)
		if !ok {
			return "", false
		}
		re, err := regexp.Compile(rule.Param)
		if err == nil && !re.MatchString(s) {
			return "does not match required pattern", true
		}

	case "email":
		s, _ := val.(string)
		if s != "" {
			if _, err := mail.ParseAddress(s); err != nil {
				return "is not a valid email address", true
			}
		}

	case "url":
		s, _ := val.(string)
		if s != "" {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return "is not a valid URL", true
			}
		}

	case "uuid":
		s, _ := val.(string)
		if s != "" {
			if !isUUID(s) {
				return "is not a valid UUID", true
			}
		}

	case "ipv4":
		s, _ := val.(string)
		if s != "" {
			ip := net.ParseIP(s)
			if ip == nil || ip.To4() == nil {
				return "is not a valid IPv4 address", true
			}
		}

	case "ipv6":
		s, _ := val.(string)
		if s != "" {
			ip := net.ParseIP(s)
			if ip == nil || ip.To4() != nil {
				return "is not a valid IPv6 address", true
			}
		}

	case "mac_address":
		s, _ := val.(string)
		if s != "" && !macRe.MatchString(s) {
			return "is not a valid MAC address", true
		}

	case "slug":
		s, _ := val.(string)
		if s != "" && !slugRe.MatchString(s) {
			return "is not a valid slug", true
		}

	case "hex_color":
		s, _ := val.(string)
		if s != "" && !hexColorRe.MatchString(s) {
			return "is not a valid hex color", true
		}

	case "phone":
		s, _ := val.(string)
		if s != "" && !phoneRe.MatchString(s) {
			return "is not a valid phone number", true
		}

	case "credit_card":
		s, _ := val.(string)
		if s != "" && !luhnValid(s) {
			return "is not a valid credit card number", true
		}

	case "min_items":
		n := collectionLen(fv)
		want, _ := strconv.Atoi(rule.Param)
		if n >= 0 && n < want {
			return fmt.Sprintf("must have at least %d items", want), true
		}

	case "max_items":
		n := collectionLen(fv)
		want, _ := strconv.Atoi(rule.Param)
		if n >= 0 && n > want {
			return fmt.Sprintf("must have at most %d items", want), true
		}

	case "unique_items":
		if fv.Kind() == reflect.Slice {
			seen := make(map[any]bool, fv.Len())
			for i := 0; i < fv.Len(); i++ {
				key := fv.Index(i).Interface()
				if seen[key] {
					return "must not contain duplicate items", true
				}
				seen[key] = true
			}
		}
	}
	return "", false
}

func collectionLen(fv reflect.Value) int {
	switch fv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return fv.Len()
	default:
		return -1
	}
}

func toFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, c := range s {
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
				return false
			}
		}
	}
	return true
}

// luhnValid runs the Luhn checksum algorithm over a digit string (spec
// §4.5: "credit_card ... runs the Luhn algorithm at runtime rather than
// pattern matching").
func luhnValid(s string) bool {
	digits := make([]int, 0, len(s))
	for _, c := range s {
		if c == ' ' || c == '-' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		digits = append(digits, int(c-'0'))
	}
	if len(digits) < 2 {
		return false
	}
	sum := 0
	parity := len(digits) % 2
	for i, d := range digits {
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
