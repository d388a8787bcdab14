package segmenter

import "regexp"

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`(\+?\d{1,3}[\-.\s]?)?\(?\d{3}\)?[\-.\s]?\d{3}[\-.\s]?\d{4}`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[a-zA-Z0-9\-_%]+/?`)
	locationPattern = regexp.MustCompile(`([A-Z][a-z]+(?:\s[A-Z][a-z]+)?),\s*([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)`)

	// YearRange matches "2019 - 2023", "2021 – Present" and similar spans.
	// Group 1 is the start year and group 2 the end year or an open-ended word.
	YearRange = regexp.MustCompile(`(\d{4})\s*[-–—]\s*(\d{4}|[Pp]resent|[Cc]urrent|[Tt]ill\s+[Dd]ate|[Oo]ngoing)`)

	singleYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	fourDigits        = regexp.MustCompile(`\d{4}`)
	cgpaPattern       = regexp.MustCompile(`(?i)(?:CGPA|GPA|CPI)\s*[:\-]?\s*\d+\.?\d*\s*/\s*\d+`)
	percentPattern    = regexp.MustCompile(`\d{2,3}\.?\d*\s*%`)
	degreePattern     = regexp.MustCompile(`(?i)\b(B\.?\s?Tech|M\.?\s?Tech|B\.?\s?E|M\.?\s?E|B\.?\s?Sc|M\.?\s?Sc|` +
		`BCA|MCA|B\.?\s?Com|M\.?\s?Com|BBA|MBA|B\.?\s?Pharm|M\.?\s?Pharm|` +
		`B\.?\s?Arch|M\.?\s?Arch|B\.?\s?Des|M\.?\s?Des|` +
		`Bachelor|Master|Ph\.?\s?D|Diploma|` +
		`Bachelor of Technology|Bachelor of Engineering|Bachelor of Science|` +
		`Master of Technology|Master of Engineering|Master of Science|` +
		`Bachelor of Computer Applications|Master of Computer Applications|` +
		`Bachelor of Business Administration|Master of Business Administration|` +
		`Bachelor of Commerce|Master of Commerce)\b`)

	lineBreak       = regexp.MustCompile(`\r?\n`)
	headerTrailing  = regexp.MustCompile(`[:\-_=]+$`)
	headerLeading   = regexp.MustCompile(`^[\d.•\-*]+\s*`)
	bulletMarker    = regexp.MustCompile(`^[•\-*]\s*`)
	numberedMarker  = regexp.MustCompile(`^\d+\.\s*`)
	numberedBullet  = regexp.MustCompile(`^\d+\.\s`)
	trailingJoiners = regexp.MustCompile(`[,|\-–—]+$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	techStackPrefix = regexp.MustCompile(`(?i)^(tech\s*stack|technologies|built\s*with|tools used)\s*[:\-]?\s*`)
	personalField   = regexp.MustCompile(`(?i)^(date of birth|d\.?o\.?b\.?|gender|sex|marital status|father'?s? name|mother'?s? name|nationality|passport(?: no\.?| number)?|religion|caste|languages known)\s*[:\-]\s*(.+)$`)
)

// jobTitleKeywords mark a line as the start of an experience entry
var jobTitleKeywords = []string{
	"engineer", "developer", "analyst", "manager", "intern", "lead", "architect",
	"designer", "consultant", "specialist", "administrator", "coordinator", "executive",
	"associate", "trainee", "officer", "head", "director", "vp", "president",
	"senior", "junior", "sr.", "jr.", "full stack", "frontend", "backend",
	"software", "data", "project", "product", "quality", "devops", "sre",
	"pharmacist", "technician", "supervisor", "assistant",
}
