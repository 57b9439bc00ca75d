package job

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID is the backend's opaque job identifier. Some endpoints encode it as a
// JSON number, others as a string; both decode to the same value. String ids
// are kept verbatim.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Job struct {
	ID              ID       `json:"id"`
	JobName         string   `json:"job_name"`
	CompanyName     string   `json:"company_name"`
	CompanySize     string   `json:"company_size"`
	Salary          string   `json:"salary"`
	City            string   `json:"city"`
	Experience      string   `json:"experience"`
	Degree          string   `json:"degree"`
	Keywords        []string `json:"keywords"`
	IsFavorite      bool     `json:"isFavorite"`
	RecommendReason string   `json:"recommendReason,omitempty"`
}

// Page is one page of search results.
type Page struct {
	List     []Job `json:"list"`
	Total    int   `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Ref is the payload of the favorite/unfavorite endpoints.
type Ref struct {
	ID ID `json:"id"`
}

type SearchParams struct {
	Keywords   string
	City       string
	Experience string
	Degree     string
	Salary     string
	Page       int
	PageSize   int
}

func (p SearchParams) Query() map[string]string {
	q := make(map[string]string, 7)
	setString(q, "keywords", p.Keywords)
	setString(q, "city", p.City)
	setString(q, "experience", p.Experience)
	setString(q, "degree", p.Degree)
	setString(q, "salary", p.Salary)
	setInt(q, "page", p.Page)
	setInt(q, "pageSize", p.PageSize)
	return q
}

type RecommendParams struct {
	Limit    int
	Keywords string
}

func (p RecommendParams) Query() map[string]string {
	q := make(map[string]string, 2)
	setInt(q, "limit", p.Limit)
	setString(q, "keywords", p.Keywords)
	return q
}

type FavoriteFilter struct {
	Keywords string
	Page     int
	PageSize int
}

func (f FavoriteFilter) Query() map[string]string {
	q := make(map[string]string, 3)
	setString(q, "keywords", f.Keywords)
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)
	return q
}

func setString(q map[string]string, key, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	q[key] = v
}

func setInt(q map[string]string, key string, v int) {
	if v <= 0 {
		return
	}
	q[key] = strconv.Itoa(v)
}
