package compose

// Apology is returned when nothing matched and no fallback text exists.
const Apology = "Sorry, I couldn't find any matching vendors."

// EmptyMessage answers a blank chat message.
const EmptyMessage = "Please enter a message."

// Separator is placed between vendor blocks.
const Separator = "\n\n---\n\n"

const acknowledgement = "Got it, you're in %s. What kind of vendor can I help you find there?"

var (
	CategoryPrompts = []string{
		"What kind of vendor are you looking for? Balloons, bakery, catering, a DJ, photography?",
		"Happy to help! Which service do you need for your event?",
		"Tell me what you're planning and which vendor you need, like a florist or a caterer.",
	}

	LocationPrompts = []string{
		"Which city should I search in?",
		"Where is the party? Tell me the city and I'll find vendors nearby.",
		"What area are you in? For example Houston, Katy or Pearland.",
	}

	Greetings = []string{
		"Here are some vendors you might like:",
		"I found these matches for you:",
		"Check out these local favorites:",
	}
)
