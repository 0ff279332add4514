package chat

import "strings"

// Intent is the classifier's guess at what the user wants: fresh results, or
// an answer about results already on screen.
type Intent string

const (
	// FetchResults means the user wants new articles retrieved.
	FetchResults Intent = "fetch_results"

	// AnswerFromContext means the user is asking about articles already
	// in the conversation.
	AnswerFromContext Intent = "answer_from_context"
)

// newsVocabulary signals an explicit request for fresh news. It takes
// priority over questionVocabulary.
var newsVocabulary = []string{
	"news",
	"latest",
	"breaking",
	"headlines",
	"updates",
	"happening",
	"find",
	"show me",
	"get me",
}

// questionVocabulary signals the user is asking about known context.
var questionVocabulary = []string{
	"what",
	"how",
	"why",
	"explain",
	"tell me about",
	"can you",
	"who",
	"when",
	"where",
}

// Classify maps free-text input to an intent. Pure and total: any string,
// including the empty one, yields an intent and nothing else happens.
//
// Both intents currently route to the same query call, but the priority
// order (news vocabulary beats question vocabulary) is part of the contract.
func Classify(input string, hasPriorResults bool) Intent {
	// Nothing to answer about until a search has run
	if !hasPriorResults {
		return FetchResults
	}

	lower := strings.ToLower(input)

	for _, term := range newsVocabulary {
		if strings.Contains(lower, term) {
			return FetchResults
		}
	}

	for _, term := range questionVocabulary {
		if strings.Contains(lower, term) {
			return AnswerFromContext
		}
	}

	return FetchResults
}
