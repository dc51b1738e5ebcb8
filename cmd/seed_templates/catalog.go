package main

import "github.com/pageza/alchemorsel-mealgen/backend/internal/types"

func ing(name, qty, unit string) types.Ingredient {
	return types.Ingredient{Name: name, Quantity: qty, Unit: unit}
}

// starterCatalog is the curated set loaded into an empty database
var starterCatalog = []types.UnifiedMeal{
	{
		Name:        "Spinach Feta Egg White Omelet",
		Description: "Fluffy egg white omelet folded over wilted spinach and feta.",
		MealSlot:    types.SlotBreakfast,
		Ingredients: []types.Ingredient{
			ing("egg whites", "250", "g"), ing("spinach", "60", "g"), ing("feta", "20", "g"), ing("cherry tomatoes", "80", "g"),
		},
		Instructions: []string{"Wilt the spinach in a nonstick pan.", "Pour in the egg whites and cook until set.", "Add feta and tomatoes, fold and serve."},
		Calories:     230, Protein: 32, Carbs: 8, Fat: 7, Fiber: 2,
		CookTime: "10 minutes", Difficulty: "Easy",
	},
	{
		Name:        "Overnight Oats with Berries",
		Description: "Rolled oats soaked in milk and Greek yogurt, topped with mixed berries.",
		MealSlot:    types.SlotBreakfast,
		Ingredients: []types.Ingredient{
			ing("rolled oats", "50", "g"), ing("greek yogurt", "150", "g"), ing("almond milk", "120", "ml"), ing("blueberries", "75", "g"), ing("chia seeds", "10", "g"),
		},
		Instructions: []string{"Stir oats, yogurt, milk and chia together.", "Refrigerate overnight.", "Top with blueberries."},
		Calories:     370, Protein: 24, Carbs: 48, Fat: 9, Fiber: 8,
		CookTime: "5 minutes", Difficulty: "Easy",
	},
	{
		Name:        "Grilled Chicken Quinoa Bowl",
		Description: "Lemon herb chicken over quinoa with roasted broccoli and peppers.",
		MealSlot:    types.SlotLunch,
		Ingredients: []types.Ingredient{
			ing("chicken breast", "150", "g"), ing("quinoa", "60", "g"), ing("broccoli", "100", "g"), ing("bell pepper", "80", "g"), ing("olive oil", "5", "ml"),
		},
		Instructions: []string{"Cook the quinoa.", "Grill the seasoned chicken.", "Roast broccoli and peppers.", "Assemble the bowl."},
		Calories:     480, Protein: 46, Carbs: 42, Fat: 12, Fiber: 7,
		CookTime: "30 minutes", Difficulty: "Medium",
	},
	{
		Name:        "Turkey Lettuce Wraps",
		Description: "Ginger garlic ground turkey served in crisp butter lettuce cups.",
		MealSlot:    types.SlotLunch,
		Ingredients: []types.Ingredient{
			ing("ground turkey", "150", "g"), ing("butter lettuce", "6", "leaves"), ing("carrot", "50", "g"), ing("ginger", "5", "g"), ing("garlic", "2", "cloves"),
		},
		Instructions: []string{"Brown the turkey with ginger and garlic.", "Stir in shredded carrot.", "Spoon into lettuce cups."},
		Calories:     310, Protein: 36, Carbs: 9, Fat: 14, Fiber: 3,
		CookTime: "15 minutes", Difficulty: "Easy",
	},
	{
		Name:        "Baked Salmon with Asparagus",
		Description: "Sheet pan salmon and asparagus with lemon and dill.",
		MealSlot:    types.SlotDinner,
		Ingredients: []types.Ingredient{
			ing("salmon fillet", "170", "g"), ing("asparagus", "150", "g"), ing("lemon", "0.5", ""), ing("dill", "2", "g"), ing("olive oil", "5", "ml"),
		},
		Instructions: []string{"Heat the oven to 200C.", "Arrange salmon and asparagus on a tray with oil and lemon.", "Bake for 15 minutes and finish with dill."},
		Calories:     420, Protein: 38, Carbs: 7, Fat: 24, Fiber: 3,
		CookTime: "20 minutes", Difficulty: "Easy",
	},
	{
		Name:        "Beef and Broccoli with Brown Rice",
		Description: "Lean flank steak stir-fried with broccoli in a light soy ginger sauce.",
		MealSlot:    types.SlotDinner,
		Ingredients: []types.Ingredient{
			ing("flank steak", "150", "g"), ing("broccoli", "150", "g"), ing("brown rice", "60", "g"), ing("low sodium soy sauce", "15", "ml"), ing("ginger", "5", "g"),
		},
		Instructions: []string{"Cook the brown rice.", "Sear sliced steak.", "Stir-fry broccoli, return steak and toss with sauce.", "Serve over rice."},
		Calories:     520, Protein: 42, Carbs: 50, Fat: 14, Fiber: 6,
		CookTime: "25 minutes", Difficulty: "Medium",
	},
	{
		Name:        "Cottage Cheese Cucumber Cup",
		Description: "Cottage cheese with cucumber, dill and cracked pepper.",
		MealSlot:    types.SlotSnack,
		Ingredients: []types.Ingredient{
			ing("cottage cheese", "170", "g"), ing("cucumber", "100", "g"), ing("dill", "1", "g"),
		},
		Instructions: []string{"Dice the cucumber.", "Fold into the cottage cheese with dill and pepper."},
		Calories:     160, Protein: 20, Carbs: 8, Fat: 4, Fiber: 1,
		CookTime: "5 minutes", Difficulty: "Easy",
	},
	{
		Name:        "Apple Slices with Almond Butter",
		Description: "Crisp apple wedges with a measured spoon of almond butter.",
		MealSlot:    types.SlotSnack,
		Ingredients: []types.Ingredient{
			ing("apple", "1", "medium"), ing("almond butter", "16", "g"),
		},
		Instructions: []string{"Slice the apple.", "Serve with almond butter for dipping."},
		Calories:     195, Protein: 4, Carbs: 28, Fat: 9, Fiber: 5,
		CookTime: "2 minutes", Difficulty: "Easy",
	},
}
