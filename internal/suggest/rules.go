package suggest

// DefaultRules is the built-in keyword table.
var DefaultRules = []Rule{
	{"milk", []string{"French toast", "Oatmeal", "Hot chocolate", "Smoothie"}},
	{"bread", []string{"Grilled cheese", "French toast", "Toast", "Croutons"}},
	{"tomato", []string{"Pasta sauce", "Bruschetta", "Salad", "Soup"}},
	{"tomatoes", []string{"Pasta sauce", "Bruschetta", "Salad", "Soup"}},
	{"chicken", []string{"Stir-fry", "Soup", "Sandwich", "Salad"}},
	{"egg", []string{"Scrambled eggs", "Omelette", "French toast"}},
	{"eggs", []string{"Scrambled eggs", "Omelette", "French toast"}},
	{"cheese", []string{"Grilled cheese", "Pasta", "Omelette", "Toast"}},
	{"potato", []string{"Mash", "Soup", "Roast", "Hash"}},
	{"potatoes", []string{"Mash", "Soup", "Roast", "Hash"}},
	{"onion", []string{"Stir-fry", "Soup", "Omelette", "Pasta"}},
	{"onions", []string{"Stir-fry", "Soup", "Omelette", "Pasta"}},
	{"rice", []string{"Stir-fry", "Rice bowl", "Soup", "Pudding"}},
	{"pasta", []string{"Pasta sauce", "Carbonara", "Salad"}},
	{"spinach", []string{"Salad", "Omelette", "Soup", "Pasta"}},
	{"mushroom", []string{"Stir-fry", "Soup", "Omelette", "Pasta"}},
	{"mushrooms", []string{"Stir-fry", "Soup", "Omelette", "Pasta"}},
	{"carrot", []string{"Soup", "Stir-fry", "Salad", "Roast"}},
	{"carrots", []string{"Soup", "Stir-fry", "Salad", "Roast"}},
	{"banana", []string{"Smoothie", "Oatmeal", "Pancakes"}},
	{"bananas", []string{"Smoothie", "Oatmeal", "Pancakes"}},
	{"lemon", []string{"Lemonade", "Fish", "Salad", "Tea"}},
	{"lemons", []string{"Lemonade", "Fish", "Salad", "Tea"}},
	{"yogurt", []string{"Smoothie", "Oatmeal", "Parfait"}},
	{"yoghurt", []string{"Smoothie", "Oatmeal", "Parfait"}},
	{"lentils", []string{"Soup", "Curry", "Salad"}},
	{"beans", []string{"Soup", "Salad", "Chilli", "Pasta"}},
	{"bacon", []string{"Carbonara", "Omelette", "Sandwich", "Salad"}},
	{"fish", []string{"Fish and vegetables", "Soup", "Tacos"}},
	{"mince", []string{"Bolognese", "Chilli", "Tacos"}},
	{"minced", []string{"Bolognese", "Chilli", "Tacos"}},
	{"beef", []string{"Stir-fry", "Soup", "Sandwich"}},
	{"pork", []string{"Stir-fry", "Roast", "Sandwich"}},
	{"lettuce", []string{"Salad", "Sandwich", "Wrap"}},
	{"cucumber", []string{"Salad", "Sandwich", "Tzatziki"}},
	{"pepper", []string{"Stir-fry", "Salad", "Roast", "Omelette"}},
	{"peppers", []string{"Stir-fry", "Salad", "Roast", "Omelette"}},
	{"broccoli", []string{"Stir-fry", "Soup", "Roast", "Pasta"}},
	{"cauliflower", []string{"Soup", "Roast", "Curry"}},
	{"zucchini", []string{"Stir-fry", "Pasta", "Roast"}},
	{"courgette", []string{"Stir-fry", "Pasta", "Roast"}},
	{"avocado", []string{"Toast", "Salad", "Guacamole"}},
	{"olive", []string{"Pasta", "Salad", "Pizza"}},
	{"olives", []string{"Pasta", "Salad", "Pizza"}},
}
