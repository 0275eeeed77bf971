package chefbot

// Choice lists the selectable values for one state field along with the value
// a fresh form starts from.
type Choice struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Default string   `json:"default,omitempty"`
	Multi   bool     `json:"multi,omitempty"`
}

// Example inputs offered next to the two request modes.
var (
	ExampleRecipes     = []string{"Butter Chicken", "Paneer Tikka", "Biryani", "Tandoori Fish"}
	ExampleIngredients = []string{"chicken, onions, spices", "paneer, cream, tomatoes", "rice, vegetables, soy sauce", "fish, lemon, herbs"}
)

// Choices returns the catalog of selectable values, in form order.
func Choices() []Choice {
	return []Choice{
		{Field: "preference", Label: "Diet Type", Options: []string{"None", "Vegan", "Keto", "Gluten-Free", "Dairy-Free", "Paleo", "Low-Carb"}, Default: "None"},
		{Field: "spice_level", Label: "Spice Level", Options: []string{"Mild", "Medium", "Spicy", "Extra Hot"}, Default: "Medium"},
		{Field: "region", Label: "Cuisine Region", Options: []string{"North Indian", "South Indian", "Italian", "Mexican", "Asian Fusion", "Continental", "Middle Eastern"}, Default: "North Indian"},
		{Field: "cooking_time", Label: "Cooking Time", Options: []string{"30 minutes", "1 hour", "1.5 hours", "2+ hours"}, Default: "1 hour"},
		{Field: "meal_type", Label: "Meal Type", Options: []string{"Breakfast", "Lunch", "Dinner", "Snack", "Dessert"}, Default: "Dinner"},
		{Field: "equipment", Label: "Available Equipment", Options: []string{"Oven", "Air Fryer", "Instant Pot", "Blender", "Grill", "Microwave"}, Multi: true},
		{Field: "cooking_method", Label: "Cooking Method", Options: []string{"Any", "Grill", "Bake", "Fry", "Steam", "Slow Cook", "Stir-Fry", "Roast"}, Default: DefaultCookingMethod},
		{Field: "protein_source", Label: "Protein Source", Options: []string{"Any", "Chicken", "Beef", "Seafood", "Vegetarian", "Vegan"}, Default: DefaultProteinSource},
		{Field: "difficulty", Label: "Difficulty Level", Options: []string{"Any", "Beginner", "Intermediate", "Advanced"}, Default: DefaultDifficulty},
		{Field: "season", Label: "Seasonal Special", Options: []string{"Any Season", "Summer", "Winter", "Monsoon", "Festive Special"}, Default: DefaultSeason},
		{Field: "min_rating", Label: "Minimum Rating", Options: []string{"1", "2", "3", "4", "5"}, Default: "3"},
	}
}

// ChoiceFor returns the catalog entry for field.
func ChoiceFor(field string) (Choice, bool) {
	for _, c := range Choices() {
		if c.Field == field {
			return c, true
		}
	}
	return Choice{}, false
}

// FormDefaults returns the state a freshly reset form submits: every choice
// at its default, no request, no free-text fields.
func FormDefaults() State {
	values := make(map[string]any)
	for _, c := range Choices() {
		if c.Default != "" {
			values[c.Field] = c.Default
		}
	}
	s, err := FromMap(values)
	if err != nil {
		panic(err)
	}
	return s
}
