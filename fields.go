package chefbot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// Field describes one named field of the State record.
type Field struct {
	Name        string `json:"name"`        // Wire name used by the mapping entry point
	Type        string `json:"type"`        // "string" or "array"
	Description string `json:"description,omitempty"`
}

var (
	fieldsOnce sync.Once
	fields     []Field
	fieldIndex map[string]Field
)

// Fields returns the descriptors of every State field in declaration order.
func Fields() []Field {
	fieldsOnce.Do(func() {
		metadata := sentinel.Inspect[State]()
		fieldIndex = make(map[string]Field, len(metadata.Fields))
		for _, f := range metadata.Fields {
			name := jsonFieldName(f)
			if name == "-" {
				continue
			}
			field := Field{Name: name, Type: goTypeToJSONType(f.Type)}
			if desc, ok := f.Tags["desc"]; ok {
				field.Description = desc
			}
			fields = append(fields, field)
			fieldIndex[name] = field
		}
	})
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FromMap builds a state from the named-field mapping the entry point accepts.
// Missing keys take their defaults. Scalars are stringified for string fields
// and sequence fields accept either a list or a comma-separated string.
func FromMap(values map[string]any) (State, error) {
	Fields()

	normalized := make(map[string]any, len(values))
	var unknown []string
	for key, value := range values {
		field, ok := fieldIndex[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if value == nil {
			continue
		}
		v, err := normalizeValue(field, value)
		if err != nil {
			return State{}, err
		}
		normalized[key] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return State{}, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return State{}, fmt.Errorf("failed to encode fields: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode fields: %w", err)
	}
	return s.WithDefaults(), nil
}

// Map renders the state as the named-field mapping.
func (s State) Map() map[string]any {
	out := map[string]any{
		"recipe_name":     s.RecipeName,
		"input_text":      s.InputText,
		"ingredients":     nonNil(s.Ingredients),
		"recipe":          s.Recipe,
		"filtered_recipe": s.FilteredRecipe,
		"preference":      s.Preference,
		"spice_level":     s.SpiceLevel,
		"region":          s.Region,
		"cooking_time":    s.CookingTime,
		"meal_type":       s.MealType,
		"equipment":       nonNil(s.Equipment),
		"cooking_method":  s.CookingMethod,
		"serving_size":    s.ServingSize,
		"protein_source":  s.ProteinSource,
		"difficulty":      s.Difficulty,
		"season":          s.Season,
	}
	if s.MinRating != "" {
		out["min_rating"] = s.MinRating
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return append([]string(nil), items...)
}

func normalizeValue(field Field, value any) (any, error) {
	switch field.Type {
	case "array":
		switch v := value.(type) {
		case []string:
			return v, nil
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if item == nil {
					continue
				}
				items = append(items, fmt.Sprint(item))
			}
			return items, nil
		case string:
			var items []string
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
			return items, nil
		default:
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalidField, field.Name, value)
		}
	default:
		switch v := value.(type) {
		case string:
			return v, nil
		case []any, []string, map[string]any:
			return nil, fmt.Errorf("%w: %s expects a scalar, got %T", ErrInvalidField, field.Name, value)
		default:
			return fmt.Sprint(v), nil
		}
	}
}

// jsonFieldName extracts the JSON field name from metadata.
func jsonFieldName(field sentinel.FieldMetadata) string {
	if jsonTag, ok := field.Tags["json"]; ok {
		parts := strings.Split(jsonTag, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0]
		}
	}
	return strings.ToLower(field.Name[:1]) + field.Name[1:]
}

// goTypeToJSONType maps the Go types used by State to JSON types.
func goTypeToJSONType(goType string) string {
	if strings.HasPrefix(goType, "[]") {
		return "array"
	}
	return "string"
}
