// internal/app/console/inlineedit/rules.go
package inlineedit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/system/htmlsanitize"
)

// Validator checks a draft value and returns a message for the operator,
// or "" when the value is acceptable. Validators do no I/O.
type Validator func(value string) string

// Rule is how one field is checked and converted before saving.
type Rule struct {
	Validate Validator
	// Convert turns the accepted draft into the stored value. Nil stores
	// the trimmed string.
	Convert func(value string) any
}

// Rules maps resource and field to a Rule.
type Rules map[resource.Name]map[string]Rule

// For returns the rule for a field. Fields without a rule accept any value.
func (r Rules) For(name resource.Name, field string) Rule {
	return r[name][field]
}

var validate = validator.New()

// Tag builds a Validator from a go-playground validator tag. msg is shown
// when the tag rejects the value.
func Tag(tag, msg string) Validator {
	return func(v string) string {
		if err := validate.Var(strings.TrimSpace(v), tag); err != nil {
			return msg
		}
		return ""
	}
}

func Required() Validator { return Tag("required", "a value is required") }

func Email() Validator { return Tag("required,email", "enter a valid email address") }

func URL() Validator { return Tag("omitempty,url", "enter a valid URL") }

func MaxLen(n int) Validator {
	return Tag(fmt.Sprintf("max=%d", n), fmt.Sprintf("must be at most %d characters", n))
}

// OneOf accepts exactly one of vals.
func OneOf(vals ...string) Validator {
	return Tag("required,oneof="+strings.Join(vals, " "), "must be one of: "+strings.Join(vals, ", "))
}

// IntRange accepts whole numbers within [min, max].
func IntRange(min, max int) Validator {
	return func(v string) string {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return "enter a whole number"
		}
		if err := validate.Var(n, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
			return fmt.Sprintf("must be between %d and %d", min, max)
		}
		return ""
	}
}

// Amount accepts non-negative decimal numbers written as plain digits.
// Inf, NaN, hex and exponent forms are rejected.
func Amount() Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if err := validate.Var(v, "required,numeric"); err != nil {
			return "enter a number"
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "enter a number"
		}
		if err := validate.Var(f, "gte=0"); err != nil {
			return "must not be negative"
		}
		return ""
	}
}

// All runs validators in order and returns the first message.
func All(vs ...Validator) Validator {
	return func(v string) string {
		for _, fn := range vs {
			if msg := fn(v); msg != "" {
				return msg
			}
		}
		return ""
	}
}

const slugMsg = "use lowercase letters, digits and dashes"

var slug = All(
	Tag("required,lowercase,max=200,excludesall=/?#", slugMsg),
	func(v string) string {
		if strings.ContainsAny(strings.TrimSpace(v), " \t") {
			return slugMsg
		}
		return ""
	},
)

func toInt(v string) any {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

func toFloat(v string) any {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}

func toRich(v string) any {
	return htmlsanitize.Sanitize(strings.TrimSpace(v))
}

// DefaultRules covers every inline-editable field in the registry.
func DefaultRules() Rules {
	text := func(n int) Rule { return Rule{Validate: All(Required(), MaxLen(n))} }
	rich := func(n int) Rule { return Rule{Validate: All(Required(), MaxLen(n)), Convert: toRich} }
	amount := Rule{Validate: Amount(), Convert: toFloat}

	return Rules{
		resource.Users: {
			"full_name": text(200),
			"email":     {Validate: Email(), Convert: func(v string) any { return strings.ToLower(strings.TrimSpace(v)) }},
			"phone":     {Validate: Tag("omitempty,e164", "enter a phone number like +15551234567")},
			"role":      {Validate: OneOf("admin", "staff", "customer")},
		},
		resource.Bookings: {
			"travelers":   {Validate: IntRange(1, 50), Convert: toInt},
			"total_price": amount,
		},
		resource.TripRequests: {
			"budget": amount,
			"notes":  {Validate: MaxLen(4000)},
		},
		resource.Destinations: {
			"name":        text(200),
			"country":     text(100),
			"description": rich(10000),
			"image_url":   {Validate: URL()},
			"price":       amount,
		},
		resource.Services: {
			"title":       text(200),
			"description": rich(5000),
			"icon":        {Validate: MaxLen(100)},
		},
		resource.FAQs: {
			"question": text(500),
			"answer":   rich(5000),
			"category": {Validate: MaxLen(100)},
		},
		resource.Blogs: {
			"title":   text(300),
			"slug":    {Validate: slug},
			"author":  text(200),
			"excerpt": {Validate: MaxLen(1000)},
		},
		resource.Reviews: {
			"comment": rich(5000),
		},
	}
}
