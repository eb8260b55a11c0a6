package core

// Category describes a transaction category for display: human-readable
// label (Spanish, as shown in the app), icon name and background color.
type Category struct {
	Key   string
	Label string
	Icon  string
	Color string
}

// DefaultCategoryKey is used whenever a transaction carries an unknown or
// empty category key.
const DefaultCategoryKey = "groceries"

var categories = map[string]Category{
	"groceries":      {Key: "groceries", Label: "Supermercado", Icon: "shopping-cart", Color: "#4B5563"},
	"rent":           {Key: "rent", Label: "Alquiler", Icon: "house", Color: "#075985"},
	"utilities":      {Key: "utilities", Label: "Servicios públicos", Icon: "lightbulb", Color: "#ca8a04"},
	"transportation": {Key: "transportation", Label: "Transporte", Icon: "car", Color: "#b45309"},
	"entertainment":  {Key: "entertainment", Label: "Entretenimiento", Icon: "film-strip", Color: "#0f766e"},
	"dining":         {Key: "dining", Label: "Restaurantes", Icon: "fork-knife", Color: "#be185d"},
	"health":         {Key: "health", Label: "Salud", Icon: "heart", Color: "#e11d48"},
	"insurance":      {Key: "insurance", Label: "Seguros", Icon: "shield-check", Color: "#404040"},
	"savings":        {Key: "savings", Label: "Ahorros", Icon: "piggy-bank", Color: "#065F46"},
	"clothing":       {Key: "clothing", Label: "Ropa", Icon: "t-shirt", Color: "#7c3aed"},
	"personal":       {Key: "personal", Label: "Gastos personales", Icon: "user", Color: "#a21caf"},
	"others":         {Key: "others", Label: "Otros", Icon: "dots-three", Color: "#525252"},
	"salary":         {Key: "salary", Label: "Salario", Icon: "currency-dollar", Color: "#16a34a"},
	"freelance":      {Key: "freelance", Label: "Freelance", Icon: "briefcase", Color: "#059669"},
}

// ResolveCategory maps a category key to its descriptor. It is total:
// unknown or empty keys resolve to the default category, never to an error.
func ResolveCategory(key string) Category {
	if c, ok := categories[key]; ok {
		return c
	}
	return categories[DefaultCategoryKey]
}

// KnownCategory reports whether key resolves without falling back.
func KnownCategory(key string) bool {
	_, ok := categories[key]
	return ok
}

// Categories returns all registry entries. The returned slice is a copy and
// carries no particular order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	return out
}
