package carbs

// Keyword tables are matched as lowercase substrings of ingredient names.
// Extend them here; the classifier has no per-ingredient special cases.

var starchyKeywords = map[string][]string{
	"grains": {
		"rice", "pasta", "spaghetti", "noodle", "bread", "bagel", "tortilla", "wrap",
		"pita", "naan", "oats", "oatmeal", "granola", "cereal", "quinoa", "couscous", "barley",
		"bulgur", "farro", "flour", "cracker", "muffin", "pancake", "waffle", "bun",
		"roll", "croissant", "polenta", "grits",
	},
	"potatoes": {
		"potato", "fries", "hash brown", "yam", "cassava", "taro", "plantain",
	},
	"legumes": {
		"bean", "lentil", "chickpea", "hummus", "pea", "edamame",
	},
	"corn_and_snacks": {
		"corn", "popcorn", "chip", "pretzel",
	},
	"breaded_fried": {
		"breaded", "battered", "crumb", "panko", "tempura",
	},
	"sweeteners": {
		"sugar", "honey", "syrup", "maple", "agave", "jam", "jelly", "banana", "date",
		"raisin", "juice",
	},
}

var fibrousKeywords = map[string][]string{
	"leafy_greens": {
		"spinach", "kale", "lettuce", "arugula", "chard", "collard", "romaine",
		"mixed greens", "bok choy", "cabbage", "watercress",
	},
	"cruciferous": {
		"broccoli", "cauliflower", "brussels", "broccolini",
	},
	"peppers_alliums": {
		"pepper", "onion", "garlic", "shallot", "leek", "scallion", "chive",
	},
	"other_vegetables": {
		"zucchini", "asparagus", "green bean", "mushroom", "tomato", "cucumber",
		"celery", "eggplant", "carrot", "radish", "snap pea", "snow pea", "okra",
		"artichoke", "squash", "berry", "berries", "apple",
	},
	"fresh_herbs": {
		"basil", "cilantro", "parsley", "mint", "dill", "rosemary", "thyme", "oregano",
	},
}

// starchyExceptions are phrases that contain a starchy keyword but are not
// a starch. They are cut out of the name before the starchy table is
// checked, so "pearl barley" still reads as a grain. Longer phrases first.
var starchyExceptions = []string{
	"hearts of palm pasta", "hearts of palm", "cauliflower rice", "riced cauliflower",
	"broccoli rice", "spaghetti squash", "zucchini noodle", "zoodle", "shirataki",
	"lettuce wrap", "green bean", "snap pea", "snow pea", "peppercorn", "chipotle",
	"cucumber roll", "rice vinegar", "rice wine vinegar", "lemon juice", "lime juice",
	"peanut", "peach", "pear",
}

// starchyQualifiers mark the whole ingredient as non-starchy
var starchyQualifiers = []string{"sugar-free", "sugar free"}

// DefaultStarchyShare is applied when no ingredient matches either table
const DefaultStarchyShare = 0.6
