package recipe

import "github.com/shopspring/decimal"

const unsplash = "https://images.unsplash.com/"

func dishImage(photo string) string {
	return unsplash + photo + "?auto=format&fit=crop&q=80&w=800"
}

func ingredientImage(photo string) string {
	return unsplash + photo + "?auto=format&fit=crop&q=80&w=300"
}

// ing builds a per-serving ingredient template.
func ing(id, name, perServing string, price int64, photo string) Ingredient {
	q := MustParseQuantity(perServing)
	p := decimal.NewFromInt(price)
	return Ingredient{
		ID:         id,
		Name:       name,
		Image:      ingredientImage(photo),
		Quantity:   q,
		PerServing: q,
		Price:      p,
		UnitPrice:  p,
	}
}

func priceRange(min, max int64) PriceRange {
	return PriceRange{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

// builtinEntries is the shipped dish catalog, in matcher tie-break order.
func builtinEntries() []Entry {
	return []Entry{
		{
			Key:      "pizza",
			Keywords: []string{"pizza", "margherita", "italian pizza", "cheese pizza"},
			Recipe:   Recipe{
				ID:          "pizza",
				Name:        "Margherita Pizza",
				Image:       dishImage("photo-1604382354936-07c5d9983bd3"),
				Servings:    1,
				PriceRange:  priceRange(200, 600),
				Ingredients: []Ingredient{
					ing("pizza-flour", "00 Pizza Flour", "250g", 40, "photo-1509440159596-0249088772ff"),
					ing("yeast", "Active Dry Yeast", "7g", 15, "photo-1585996560233-a81c58eacde7"),
					ing("mozzarella", "Fresh Mozzarella", "200g", 120, "photo-1552767059-ce182ead6c1b"),
					ing("tomato-sauce", "San Marzano Tomatoes", "200g", 60, "photo-1546094096-0df4bcaaa337"),
					ing("olive-oil-pizza", "Extra Virgin Olive Oil", "30ml", 40, "photo-1474979266404-7eaacbcd87c5"),
					ing("basil-pizza", "Fresh Basil Leaves", "10 leaves", 30, "photo-1618164435735-413d3b066c9a"),
				},
			},
		},
		{
			Key:      "pasta",
			Keywords: []string{"pasta", "fettuccine", "alfredo", "white sauce pasta", "italian pasta"},
			Recipe:   Recipe{
				ID:          "pasta",
				Name:        "Fettuccine Alfredo",
				Image:       dishImage("photo-1645112411341-6c4fd023714a"),
				Servings:    1,
				PriceRange:  priceRange(150, 500),
				Ingredients: []Ingredient{
					ing("fettuccine", "Fresh Fettuccine", "200g", 80, "photo-1551462147-ff29053bfc14"),
					ing("heavy-cream", "Heavy Cream", "200ml", 60, "photo-1563636619-e9143da7973b"),
					ing("parmesan", "Parmesan Cheese", "100g", 120, "photo-1566454825481-9c4cadf8c7dd"),
					ing("butter", "Unsalted Butter", "60g", 40, "photo-1589985270826-4b7bb135bc9d"),
					ing("garlic-pasta", "Fresh Garlic", "4 cloves", 15, "photo-1540420773420-3366772f4999"),
				},
			},
		},
		{
			Key:      "biryani",
			Keywords: []string{"biryani", "hyderabadi biryani", "chicken biryani", "dum biryani"},
			Recipe:   Recipe{
				ID:          "biryani",
				Name:        "Hyderabadi Chicken Biryani",
				Image:       dishImage("photo-1563379091339-03b21ab4a4f8"),
				Servings:    1,
				PriceRange:  priceRange(250, 800),
				Ingredients: []Ingredient{
					ing("basmati", "Aged Basmati Rice", "200g", 80, "photo-1586201375761-83865001e31c"),
					ing("chicken-biryani", "Chicken Thighs", "300g", 150, "photo-1587593810167-a84920ea0781"),
					ing("yogurt-biryani", "Plain Yogurt", "100g", 30, "photo-1563636619-e9143da7973b"),
					ing("biryani-masala", "Biryani Masala", "30g", 40, "photo-1596040033229-a9821ebd058d"),
					ing("saffron-biryani", "Saffron Strands", "0.5g", 100, "photo-1584104582789-c48d23cd4c12"),
					ing("ghee-biryani", "Pure Ghee", "50g", 60, "photo-1631451095765-2c91616fc9e6"),
				},
			},
		},
		{
			Key:      "noodles",
			Keywords: []string{"noodles", "schezwan noodles", "chinese noodles", "hakka noodles"},
			Recipe:   Recipe{
				ID:          "noodles",
				Name:        "Schezwan Noodles",
				Image:       dishImage("photo-1634864572865-1c31d5929cda"),
				Servings:    1,
				PriceRange:  priceRange(150, 450),
				Ingredients: []Ingredient{
					ing("egg-noodles", "Egg Noodles", "200g", 60, "photo-1612929633738-8fe44f7ec841"),
					ing("schezwan-sauce", "Schezwan Sauce", "50g", 40, "photo-1599909092372-f22c0d9b5156"),
					ing("mixed-veggies", "Mixed Vegetables", "200g", 50, "photo-1540420773420-3366772f4999"),
					ing("soy-sauce-noodles", "Dark Soy Sauce", "30ml", 30, "photo-1598457005530-83d4d86bc720"),
					ing("sesame-oil-noodles", "Sesame Oil", "30ml", 40, "photo-1474979266404-7eaacbcd87c5"),
				},
			},
		},
		{
			Key:      "burger",
			Keywords: []string{"burger", "cheese burger", "hamburger", "beef burger"},
			Recipe:   Recipe{
				ID:          "burger",
				Name:        "Classic Cheese Burger",
				Image:       dishImage("photo-1568901346375-23c9450c58cd"),
				Servings:    1,
				PriceRange:  priceRange(200, 500),
				Ingredients: []Ingredient{
					ing("beef-patty", "Ground Beef Patty", "200g", 150, "photo-1588168333986-5078d3ae3976"),
					ing("burger-buns", "Sesame Burger Buns", "2 pieces", 40, "photo-1586444248902-2f64eddc13df"),
					ing("cheese-slice", "Cheddar Cheese", "2 slices", 40, "photo-1566454825481-9c4cadf8c7dd"),
					ing("lettuce", "Iceberg Lettuce", "50g", 20, "photo-1622205313162-be1d5712a43c"),
					ing("tomato-burger", "Fresh Tomatoes", "2 slices", 15, "photo-1546094096-0df4bcaaa337"),
				},
			},
		},
		{
			Key:      "haleem",
			Keywords: []string{"haleem", "hyderabadi haleem", "mutton haleem"},
			Recipe:   Recipe{
				ID:          "haleem",
				Name:        "Hyderabadi Haleem",
				Image:       dishImage("photo-1633945274405-b6c8069047b0"),
				Servings:    1,
				PriceRange:  priceRange(200, 600),
				Ingredients: []Ingredient{
					ing("mutton", "Mutton", "250g", 200, "photo-1608877907149-a206d75ba011"),
					ing("wheat", "Broken Wheat", "100g", 30, "photo-1509440159596-0249088772ff"),
					ing("lentils-mix", "Mixed Lentils", "100g", 40, "photo-1612929633738-8fe44f7ec841"),
					ing("ghee-haleem", "Pure Ghee", "50g", 60, "photo-1631451095765-2c91616fc9e6"),
					ing("spices-haleem", "Haleem Spice Mix", "30g", 50, "photo-1596040033229-a9821ebd058d"),
				},
			},
		},
		{
			Key:      "roti",
			Keywords: []string{"roti", "chapati", "butter roti", "dal roti"},
			Recipe:   Recipe{
				ID:          "roti",
				Name:        "Butter Roti with Dal",
				Image:       dishImage("photo-1626082927389-6cd097cdc6ec"),
				Servings:    1,
				PriceRange:  priceRange(100, 300),
				Ingredients: []Ingredient{
					ing("wheat-flour", "Whole Wheat Flour", "200g", 30, "photo-1509440159596-0249088772ff"),
					ing("butter-roti", "Butter", "30g", 25, "photo-1589985270826-4b7bb135bc9d"),
					ing("yellow-dal", "Yellow Dal", "100g", 40, "photo-1612929633738-8fe44f7ec841"),
					ing("tomatoes-dal", "Tomatoes", "100g", 20, "photo-1546094096-0df4bcaaa337"),
					ing("onions-dal", "Onions", "100g", 20, "photo-1580201092675-a0a6a6cafbb1"),
				},
			},
		},
	}
}

var builtin = mustBuiltin()

func mustBuiltin() *Catalog {
	c, err := NewCatalog(builtinEntries())
	if err != nil {
		panic(err)
	}
	return c
}

// Builtin returns the shipped catalog. It is built once at package init and never
// written to afterwards.
func Builtin() *Catalog {
	return builtin
}
