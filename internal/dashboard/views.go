// Package dashboard keeps the per-session state of the dashboard: where the
// user navigated to and the job screen that is currently mounted.
package dashboard

import "jobdash/internal/router"

// Job views that own a screen. Hot jobs and job details are not routes of
// their own but still get a screen.
const (
	ViewSearch    = "job/JobSearch"
	ViewFavorites = "job/JobCollect"
	ViewRecommend = "job/JobRecommend"
	ViewHot       = "job/JobHot"
	ViewDetail    = "job/JobDetail"
)

var components = []string{
	"Login",
	"Index",
	"Home",
	"user/User",
	"user/Mine",
	"user/SetPwd",
	"count/City",
	"count/Degree",
	"count/Experience",
	"count/Skills",
	ViewSearch,
	ViewFavorites,
	ViewRecommend,
}

var listing = map[string]bool{
	ViewSearch:    true,
	ViewFavorites: true,
	ViewRecommend: true,
}

// Views is the component registry backing the route table.
func Views() router.Registry {
	reg := make(router.Registry, len(components))
	for _, c := range components {
		reg[c] = viewFor
	}
	return reg
}

func viewFor(component string) (router.View, error) {
	return router.View{Component: component, Listing: listing[component]}, nil
}
