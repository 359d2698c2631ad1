package fetch

import (
	"net/url"
	"strings"
)

// Platform identifies the job board or applicant tracking system hosting a
// posting.
type Platform string

const (
	PlatformLinkedIn      Platform = "linkedin"
	PlatformIndeed        Platform = "indeed"
	PlatformGlassdoor     Platform = "glassdoor"
	PlatformMonster       Platform = "monster"
	PlatformZipRecruiter  Platform = "ziprecruiter"
	PlatformDice          Platform = "dice"
	PlatformStackOverflow Platform = "stackoverflow"
	PlatformWellfound     Platform = "wellfound"
	PlatformGreenhouse    Platform = "greenhouse"
	PlatformLever         Platform = "lever"
	PlatformWorkday       Platform = "workday"
	PlatformUnknown       Platform = "unknown"
)

// platformHosts maps host fragments to platforms. A host matches when it
// contains the fragment.
var platformHosts = []struct {
	fragment string
	platform Platform
}{
	{"linkedin.com", PlatformLinkedIn},
	{"indeed.com", PlatformIndeed},
	{"glassdoor.com", PlatformGlassdoor},
	{"monster.com", PlatformMonster},
	{"ziprecruiter.com", PlatformZipRecruiter},
	{"dice.com", PlatformDice},
	{"stackoverflow.com", PlatformStackOverflow},
	{"angel.co", PlatformWellfound},
	{"wellfound.com", PlatformWellfound},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
}

// DetectPlatform identifies the hosting platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return PlatformUnknown
	}
	for _, h := range platformHosts {
		if strings.Contains(host, h.fragment) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the selectors wrapping the description on
// a platform, most specific first.
func PlatformContentSelectors(platform Platform) []string {
	var specific []string
	switch platform {
	case PlatformLinkedIn:
		specific = []string{".show-more-less-html__markup", ".description__text", ".jobs-description__content"}
	case PlatformIndeed:
		specific = []string{"#jobDescriptionText", ".jobsearch-jobDescriptionText"}
	case PlatformGlassdoor:
		specific = []string{"[class*='JobDetails_jobDescription']", ".jobDescriptionContent", "#JobDescriptionContainer"}
	case PlatformMonster:
		specific = []string{"[data-testid='svx-description-container-inner']", ".job-description"}
	case PlatformZipRecruiter:
		specific = []string{".job_description", ".jobDescriptionSection"}
	case PlatformDice:
		specific = []string{"[data-testid='jobDescriptionHtml']", "#jobdescSec"}
	case PlatformStackOverflow:
		specific = []string{".job-details--content", "#overview-items"}
	case PlatformWellfound:
		specific = []string{"[class*='description']", ".job-listing-description"}
	case PlatformGreenhouse:
		specific = []string{".job__description.body", ".job__description", "#content"}
	case PlatformLever:
		specific = []string{".posting-page", ".posting-description", ".content"}
	case PlatformWorkday:
		specific = []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"}
	}
	return append(specific, JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns elements to drop before extracting text.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".apply-button-container",
		".eeo-statement",
		".voluntary-disclosure",
		".social-share",
		".share-buttons",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformLinkedIn:
		return append(common, ".sign-in-modal", ".join-form", ".similar-jobs", ".people-also-viewed")
	case PlatformIndeed:
		return append(common, "#jobsearch-ViewJobButtons-container", ".jobsearch-CompanyReview")
	case PlatformGlassdoor:
		return append(common, "[data-test='hardsellOverlay']", ".gd-ui-modal")
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".lever-application-form")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
