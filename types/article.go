package types

import "time"

// Article is a stored submission with its derived metadata. The fingerprint
// uniquely identifies the article; two submissions that normalize to the same
// text share a fingerprint and only the first one is persisted.
type Article struct {
	ID                 int64               `json:"id"`
	Fingerprint        string              `json:"fingerprint"`
	Title              string              `json:"title,omitempty"`
	Text               string              `json:"text"`
	Summary            string              `json:"summary,omitempty"`
	Source             string              `json:"source,omitempty"`
	Author             string              `json:"author,omitempty"`
	OriginalLink       string              `json:"original_link,omitempty"`
	Language           string              `json:"language"`
	CategoriesAuto     []string            `json:"categories_auto"`
	CategoriesUser     []string            `json:"categories_user"`
	CategoriesAdvanced *AdvancedCategories `json:"categories_advanced,omitempty"`
	CommentsCount      int                 `json:"comments_count"`
	LikesCount         int                 `json:"likes_count"`
	ViewsCount         int                 `json:"views_count"`
	SubmitterID        int64               `json:"submitter_id,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// AdvancedCategories is the structured output of the AI classifier. It is
// absent (nil on Article) when the classifier is unconfigured or failed.
type AdvancedCategories struct {
	PrimaryCategory string   `json:"primary_category"`
	Subcategories   []string `json:"subcategories,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Confidence      float64  `json:"confidence"`
	Summary         string   `json:"summary,omitempty"`
}

// Submission is the pipeline input: exactly one of Text or URL must be set.
// ForceText skips URL resolution even when URL is also present.
type Submission struct {
	Text      string `json:"text,omitempty"`
	URL       string `json:"url,omitempty"`
	ForceText bool   `json:"force_text,omitempty"`

	// Optional caller-supplied metadata; extracted values fill the gaps.
	Title       string `json:"title,omitempty"`
	Source      string `json:"source,omitempty"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	SubmitterID int64  `json:"submitter_id,omitempty"`
}
