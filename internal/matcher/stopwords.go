package matcher

// stopWords are discarded during single-token extraction: function words,
// job-post boilerplate and seniority/role titles.
var stopWords = toSet(
	"a", "an", "the", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "shall", "can", "need", "must",
	"we", "you", "he", "she", "it", "they", "i", "me", "my", "your",
	"our", "their", "this", "that", "these", "those", "not", "no",
	"if", "then", "than", "so", "as", "up", "out", "about", "into",
	"over", "after", "before", "between", "through", "during", "above",
	"below", "such", "each", "every", "all", "any", "both", "few",
	"more", "most", "other", "some", "only", "own", "same", "also",
	"just", "very", "well", "how", "what", "which", "who", "whom",
	"when", "where", "why", "able", "etc",
	"experience", "years", "year", "work", "working", "role", "team",
	"strong", "good", "excellent", "preferred", "required", "minimum",
	"plus", "including", "using", "knowledge", "understanding",
	"ability", "skills", "skill", "proficiency", "proficient",
	"familiar", "familiarity", "exposure",
	"looking", "seeking", "hiring", "join", "ideal", "candidate",
	"responsible", "responsibilities", "opportunity", "position",
	"company", "organization", "department", "apply", "application",
	"benefits", "salary", "compensation", "remote", "hybrid",
	"onsite", "full-time", "part-time", "contract", "description",
	"qualification", "qualifications", "requirement", "requirements",
	"deadline", "location", "based", "environment",
	"junior", "senior", "lead", "principal", "staff", "intern",
	"manager", "director", "associate", "analyst", "specialist",
	"engineer", "developer", "architect", "consultant", "coordinator",
	"officer", "executive", "administrator", "supervisor",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether a lowercased token is ignored during extraction
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
