package facility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/parking-fee/internal/tariff"
)

// ErrInvalidConfig wraps every schema or validation failure of a facility document.
var ErrInvalidConfig = errors.New("facility: invalid configuration")

// Document is the on-disk shape of one facility's pricing rules.
type Document struct {
	Tiers       []TierDoc       `json:"regras_minutos" validate:"dive"`
	Incremental *IncrementalDoc `json:"incremental_pricing,omitempty"`
	Daily       *DailyDoc       `json:"diaria,omitempty"`
}

// TierDoc is one entry of regras_minutos.
type TierDoc struct {
	Limit float64         `json:"limite" validate:"gte=0"`
	Price decimal.Decimal `json:"valor" validate:"gte=0"`
}

// IncrementalDoc configures overage billing.
type IncrementalDoc struct {
	AppliesAfterMinutes float64         `json:"applies_after_minutes" validate:"gte=0"`
	IntervalMinutes     float64         `json:"interval_minutes" validate:"gt=0"`
	PricePerInterval    decimal.Decimal `json:"price_per_interval" validate:"gte=0"`
}

// DailyDoc configures the daily rate. A null ativa_apos_minutos makes it a cap.
type DailyDoc struct {
	Rate                   *decimal.Decimal `json:"valor" validate:"omitempty,gte=0"`
	ActivationMinutes      *float64         `json:"ativa_apos_minutos"`
	CappingIntervalMinutes *float64         `json:"capping_interval_minutes,omitempty" validate:"omitempty,gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes a facility file: a JSON object keyed by facility name.
func Parse(data []byte) (map[string]tariff.Rules, error) {
	var docs map[string]Document
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&docs); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidConfig, err)
	}
	out := make(map[string]tariff.Rules, len(docs))
	for _, name := range sortedKeys(docs) {
		rules, err := docs[name].Rules(name)
		if err != nil {
			return nil, err
		}
		out[name] = rules
	}
	return out, nil
}

// ParseDocument decodes the rules of a single facility.
func ParseDocument(name string, data []byte) (tariff.Rules, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return tariff.Rules{}, fmt.Errorf("%w: %s: decode: %v", ErrInvalidConfig, name, err)
	}
	return doc.Rules(name)
}

// Rules validates the document and converts it into calculator rules.
func (d Document) Rules(name string) (tariff.Rules, error) {
	if strings.TrimSpace(name) == "" {
		return tariff.Rules{}, fmt.Errorf("%w: facility name is empty", ErrInvalidConfig)
	}
	if err := validate.Struct(d); err != nil {
		return tariff.Rules{}, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, name, describe(err))
	}
	rules := tariff.Rules{Tiers: make([]tariff.Tier, 0, len(d.Tiers))}
	for i, t := range d.Tiers {
		if i > 0 && t.Limit <= d.Tiers[i-1].Limit {
			return tariff.Rules{}, fmt.Errorf("%w: %s: regras_minutos[%d].limite %v must be greater than %v",
				ErrInvalidConfig, name, i, t.Limit, d.Tiers[i-1].Limit)
		}
		rules.Tiers = append(rules.Tiers, tariff.Tier{LimitMinutes: t.Limit, Price: t.Price})
	}
	if inc := d.Incremental; inc != nil {
		rules.Incremental = &tariff.Incremental{
			AppliesAfterMinutes: inc.AppliesAfterMinutes,
			IntervalMinutes:     inc.IntervalMinutes,
			PricePerInterval:    inc.PricePerInterval,
		}
	}
	if daily := d.Daily; daily != nil {
		out := &tariff.Daily{
			Rate:                   daily.Rate,
			ActivationMinutes:      daily.ActivationMinutes,
			CappingIntervalMinutes: tariff.DefaultCappingIntervalMinutes,
		}
		if daily.CappingIntervalMinutes != nil {
			out.CappingIntervalMinutes = *daily.CappingIntervalMinutes
		}
		rules.Daily = out
	}
	return rules, nil
}

// DocumentFromRules is the inverse of Document.Rules.
func DocumentFromRules(rules tariff.Rules) Document {
	doc := Document{Tiers: make([]TierDoc, 0, len(rules.Tiers))}
	for _, t := range rules.Tiers {
		doc.Tiers = append(doc.Tiers, TierDoc{Limit: t.LimitMinutes, Price: t.Price})
	}
	if inc := rules.Incremental; inc != nil {
		doc.Incremental = &IncrementalDoc{
			AppliesAfterMinutes: inc.AppliesAfterMinutes,
			IntervalMinutes:     inc.IntervalMinutes,
			PricePerInterval:    inc.PricePerInterval,
		}
	}
	if daily := rules.Daily; daily != nil {
		interval := daily.CappingIntervalMinutes
		doc.Daily = &DailyDoc{
			Rate:                   daily.Rate,
			ActivationMinutes:      daily.ActivationMinutes,
			CappingIntervalMinutes: &interval,
		}
	}
	return doc
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
