package lexicon

var defaultCategories = []CategoryEntry{
	{Name: "balloons", Synonyms: []string{"balloon", "balloons", "balloon arch", "balloon garland", "balloon decor", "balloon artist"}},
	{Name: "bakery", Synonyms: []string{"bakery", "baker", "cake", "cakes", "cupcake", "cupcakes", "cookies", "desserts", "dessert table"}},
	{Name: "catering", Synonyms: []string{"catering", "caterer", "caterers", "buffet", "food truck", "private chef", "bbq"}},
	{Name: "dj", Synonyms: []string{"dj", "deejay", "disc jockey", "sound system", "music"}},
	{Name: "photography", Synonyms: []string{"photographer", "photography", "photos", "videographer", "videography"}},
	{Name: "florist", Synonyms: []string{"florist", "flowers", "floral", "bouquet", "bouquets"}},
	{Name: "venue", Synonyms: []string{"venue", "venues", "event hall", "banquet hall", "ballroom", "event space"}},
	{Name: "decor", Synonyms: []string{"decor", "decorations", "decorator", "backdrop", "centerpieces", "draping"}},
	{Name: "entertainment", Synonyms: []string{"entertainment", "entertainer", "magician", "clown", "face painting", "face painter", "mascot", "characters"}},
	{Name: "rentals", Synonyms: []string{"rentals", "rental", "bounce house", "bouncy castle", "tables and chairs", "tent", "photo booth"}},
	{Name: "planner", Synonyms: []string{"planner", "event planner", "party planner", "coordinator", "event coordinator"}},
}

var defaultOccasions = []OccasionEntry{
	{Tag: "baby shower", Cues: []string{"baby shower", "gender reveal", "sprinkle", "baby sprinkle"}, Bundle: []string{"balloons", "bakery", "decor"}},
	{Tag: "bridal shower", Cues: []string{"bridal", "bridal shower", "bachelorette"}, Bundle: []string{"florist", "bakery", "decor"}},
	{Tag: "wedding", Cues: []string{"wedding", "reception", "engagement"}, Bundle: []string{"venue", "photography", "florist", "catering", "dj"}},
	{Tag: "birthday", Cues: []string{"birthday", "bday", "turning", "sweet 16", "sweet sixteen", "quinceanera", "quince"}, Bundle: []string{"balloons", "bakery", "entertainment", "rentals"}},
	{Tag: "graduation", Cues: []string{"graduation", "grad party", "graduating"}, Bundle: []string{"catering", "balloons", "photography"}},
	{Tag: "corporate", Cues: []string{"corporate", "company party", "office party", "team event"}, Bundle: []string{"venue", "catering", "dj"}},
	{Tag: "holiday", Cues: []string{"christmas", "halloween", "new years", "thanksgiving", "holiday party"}, Bundle: []string{"decor", "catering", "dj"}},
}

// defaultNearbyPlaces is the fixed part of the gazetteer; the catalog adds
// every city it actually lists.
var defaultNearbyPlaces = []string{
	"houston", "pearland", "sugar land", "katy", "the woodlands", "spring", "cypress",
	"humble", "pasadena", "league city", "friendswood", "missouri city", "richmond",
	"rosenberg", "conroe", "baytown", "kingwood", "bellaire", "galveston", "tomball",
	"stafford", "webster", "clear lake", "alvin", "manvel", "fulshear", "seabrook",
}

var defaultLocationCues = []string{"in", "near", "around"}

var defaultBundleCues = []string{
	"everything for", "everything i need", "full package", "whole party", "all the vendors",
	"one stop", "plan my", "plan the whole", "plan a whole",
}

var defaultStopWords = []string{
	"a", "an", "the", "and", "or", "for", "of", "to", "in", "on", "at", "by", "near", "around",
	"with", "from", "my", "our", "your", "me", "us", "we", "i", "im", "am", "is", "are", "be",
	"need", "needs", "want", "wants", "looking", "look", "find", "get", "have", "has", "make",
	"take", "like", "some", "any", "this", "that", "these", "those", "next", "please", "can",
	"could", "would", "will", "who", "what", "where", "when", "how", "do", "does", "it", "its",
	"best", "good", "great", "nice", "cheap", "affordable", "party", "event", "help", "hi",
	"hello", "hey", "thanks", "thank", "you", "just", "also", "so", "up", "out", "there",
	"time", "town", "area", "mind", "hurry", "advance", "person", "budget", "total", "week",
	"weekend", "month", "today", "tomorrow", "tonight", "january", "february", "march", "april",
	"may", "june", "july", "august", "september", "october", "november", "december",
}
