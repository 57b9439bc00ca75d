// jobctl calls the jobs backend directly, one operation per invocation.
//
//	jobctl -token $TOKEN search -keywords go -city Berlin
//	jobctl -token $TOKEN favorite -id 42
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"jobdash/internal/config"
	"jobdash/internal/domain/job"
	"jobdash/internal/jobapi"
	"jobdash/internal/transport"
)

type command struct {
	usage string
	run   func(ctx context.Context, api *jobapi.Client, args []string) (any, error)
}

var commands = map[string]command{
	"search": {
		usage: "search [-keywords k] [-city c] [-experience e] [-degree d] [-salary s] [-page n] [-pageSize n]",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			fs := flag.NewFlagSet("search", flag.ExitOnError)
			var p job.SearchParams
			fs.StringVar(&p.Keywords, "keywords", "", "search keywords")
			fs.StringVar(&p.City, "city", "", "city")
			fs.StringVar(&p.Experience, "experience", "", "experience band")
			fs.StringVar(&p.Degree, "degree", "", "degree")
			fs.StringVar(&p.Salary, "salary", "", "salary band")
			fs.IntVar(&p.Page, "page", 0, "page number")
			fs.IntVar(&p.PageSize, "pageSize", 0, "page size")
			_ = fs.Parse(args)
			return api.SearchJobs(ctx, p)
		},
	},
	"hot": {
		usage: "hot [-limit n]",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			fs := flag.NewFlagSet("hot", flag.ExitOnError)
			limit := fs.Int("limit", jobapi.DefaultHotLimit, "number of jobs")
			_ = fs.Parse(args)
			return api.GetHotJobs(ctx, *limit)
		},
	},
	"recommend": {
		usage: "recommend [-limit n] [-keywords k]",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			fs := flag.NewFlagSet("recommend", flag.ExitOnError)
			var p job.RecommendParams
			fs.IntVar(&p.Limit, "limit", 0, "number of jobs")
			fs.StringVar(&p.Keywords, "keywords", "", "keywords")
			_ = fs.Parse(args)
			return api.GetRecommendedJobs(ctx, p)
		},
	},
	"favorites": {
		usage: "favorites [-keywords k] [-page n] [-pageSize n]",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			fs := flag.NewFlagSet("favorites", flag.ExitOnError)
			var f job.FavoriteFilter
			fs.StringVar(&f.Keywords, "keywords", "", "keywords")
			fs.IntVar(&f.Page, "page", 0, "page number")
			fs.IntVar(&f.PageSize, "pageSize", 0, "page size")
			_ = fs.Parse(args)
			return api.GetFavoriteJobs(ctx, f)
		},
	},
	"detail": {
		usage: "detail -id <job id>",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			return api.GetJobDetail(ctx, parseID("detail", args))
		},
	},
	"favorite": {
		usage: "favorite -id <job id>",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			return api.FavoriteJob(ctx, job.Ref{ID: parseID("favorite", args)})
		},
	},
	"unfavorite": {
		usage: "unfavorite -id <job id>",
		run: func(ctx context.Context, api *jobapi.Client, args []string) (any, error) {
			return api.UnfavoriteJob(ctx, job.Ref{ID: parseID("unfavorite", args)})
		},
	},
}

func parseID(name string, args []string) job.ID {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "job id")
	_ = fs.Parse(args)
	return job.ID(strings.TrimSpace(*id))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jobctl [-token t] <command> [flags]")
	for _, name := range []string{"search", "hot", "recommend", "favorites", "detail", "favorite", "unfavorite"} {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func main() {
	token := flag.String("token", os.Getenv("JOBS_API_TOKEN"), "backend access token")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tr, err := transport.NewHTTPTransport(cfg.BaseURL, cfg.Timeout, log.Default())
	if err != nil {
		log.Fatalf("failed to init transport: %v", err)
	}

	ctx := transport.WithToken(context.Background(), strings.TrimSpace(*token))
	out, err := cmd.run(ctx, jobapi.New(tr), flag.Args()[1:])
	if err != nil {
		log.Fatalf("%s failed: %v", flag.Arg(0), err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
