package classifier

// DefaultCorpus returns the seed phrases the local model learns from, keyed
// by label. It covers the intent labels and the spending category labels.
func DefaultCorpus() map[string][]string {
	return map[string][]string{
		// intents
		"add_expense": {
			"i spent 25 on groceries",
			"spent 40 dollars on gas",
			"add expense 12 for lunch",
			"paid 60 for the electricity bill",
			"bought shoes for 80",
			"i paid 15 bucks for a movie ticket",
			"record 9.99 for coffee",
			"log an expense of 30 for a taxi",
			"add 100 for textbooks",
			"just spent 45 at the restaurant",
			"spent 7 on snacks",
			"i bought a 20 dollar gift",
		},
		"view_budget": {
			"show my budget",
			"view my budget",
			"how much budget do i have left",
			"view budget status",
			"what is my budget",
			"how am i doing on my budget",
			"check my budget limits",
			"budget overview",
			"remaining budget this month",
			"am i over budget",
			"budget status",
		},
		"get_advice": {
			"give me some advice",
			"any tips to save money",
			"how can i save money",
			"what should i do to spend less",
			"financial advice please",
			"help me cut costs",
			"suggestions for saving",
			"how do i improve my spending habits",
			"advice",
			"tips",
		},
		"categorize_spending": {
			"categorize my spending",
			"categorize my expenses",
			"show spending by category",
			"what categories did i spend on",
			"group my expenses by category",
			"break my expenses into categories",
			"sort my purchases into categories",
			"expenses per category",
		},
		"set_budget": {
			"set my budget to 2000",
			"change budget to 1500 dollars",
			"set food budget to 400",
			"update my monthly budget",
			"make my budget 3000",
			"increase budget for travel to 500",
			"lower my entertainment budget to 100",
			"set a limit of 300 for shopping",
			"set budget",
		},
		"analyze_trends": {
			"analyze my spending trends",
			"show spending patterns",
			"what are my trends",
			"how has my spending changed",
			"where does most of my money go",
			"spending analysis",
			"what is my top spending category",
			"average transaction size",
			"analyze trends",
		},
		"greeting": {
			"hello",
			"hi",
			"hey there",
			"good morning",
			"good evening",
			"hi bot",
			"hello there",
			"howdy",
			"greetings",
		},
		"help": {
			"help",
			"what can you do",
			"how do i use this",
			"show me commands",
			"i need help",
			"what commands are available",
			"how does this work",
			"instructions please",
		},

		// categories
		"food_dining": {
			"groceries", "grocery store", "lunch", "dinner", "breakfast",
			"coffee", "restaurant", "pizza", "burger", "snacks",
			"supermarket", "takeout", "cafe", "food", "sushi",
		},
		"transportation": {
			"gas", "fuel", "taxi", "uber", "bus fare", "train fare",
			"parking", "metro card", "car repair", "lyft", "subway", "toll",
		},
		"shopping": {
			"clothes", "shoes", "amazon order", "electronics", "new phone",
			"jacket", "gift", "furniture", "mall", "headphones", "shirt",
		},
		"entertainment": {
			"movie", "movies", "concert", "netflix", "games", "video game",
			"cinema", "theater", "spotify", "party", "bowling", "movie ticket",
		},
		"utilities_bills": {
			"electricity", "electricity bill", "water bill", "internet",
			"phone bill", "rent", "utilities", "cable", "insurance", "bill",
		},
		"healthcare": {
			"doctor", "pharmacy", "medicine", "dentist", "hospital",
			"prescription", "vitamins", "clinic", "therapy", "checkup",
		},
		"education": {
			"books", "textbooks", "tuition", "course", "online class",
			"school supplies", "workshop", "lessons", "textbook",
		},
		"travel": {
			"flight", "hotel", "airbnb", "vacation", "plane ticket",
			"luggage", "trip", "resort", "hostel", "airfare",
		},
		"other": {
			"misc", "miscellaneous", "stuff", "donation", "charity", "fee",
		},
	}
}
