package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/client"
	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	token := flag.String("token", os.Getenv("CINETRACK_TOKEN"), "bearer token (defaults to $CINETRACK_TOKEN)")
	interval := flag.Duration("interval", client.DefaultInterval, "reconciliation interval")
	engagement := flag.Float64("engagement", client.DefaultEngagementProbability, "probability of a local engagement nudge per pass")
	query := flag.String("search", "", "run a debounced user search once and print the results")
	flag.Parse()

	if *token == "" {
		log.Fatal("a bearer token is required (-token or CINETRACK_TOKEN)")
	}

	logger := logging.New("development")
	api := client.NewAPI(*server, *token)

	if *query != "" {
		runSearch(api, *query)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := client.NewReconciler(api, client.NewLogAlerter(logger), logger, client.ReconcilerConfig{
		Interval:              *interval,
		EngagementProbability: *engagement,
	})
	r.Start()
	log.Printf("Reconciling against %s every %s. Send SIGHUP to refresh now.", *server, *interval)

	refresh := make(chan os.Signal, 1)
	signal.Notify(refresh, syscall.SIGHUP)
	defer signal.Stop(refresh)

	for {
		select {
		case <-ctx.Done():
			r.Stop()
			log.Printf("Stopped. Last badges: %+v", r.Badges())
			return
		case <-refresh:
			r.Refresh(ctx)
			showFeed(r)
			b := r.Badges()
			log.Printf("Badges: unread=%d pending=%d engagement=%d total=%d", b.Unread, b.Pending, b.Engagement, b.Total)
		}
	}
}

// showFeed prints the merged feed. Engagement items count as read once shown;
// graph notifications stay unread until marked on the server.
func showFeed(r *client.Reconciler) {
	feed := r.Feed()
	if len(feed) == 0 {
		log.Println("Feed is empty.")
		return
	}
	for _, n := range feed {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		log.Printf("%s %s [%s] %s: %s", mark, n.CreatedAt.Format(time.Kitchen), n.Source, n.Title, n.Message)
		if n.Source == models.SourceEngagement && !n.IsRead {
			r.MarkEngagementRead(n.Key)
		}
	}
}

func runSearch(api *client.API, query string) {
	s := client.NewSearcher(api.SearchUsers, client.DefaultQuietPeriod)
	defer s.Close()

	s.SetQuery(query)
	deadline := time.Now().Add(15 * time.Second)
	for s.State().Loading && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	st := s.State()
	if st.Err != nil {
		log.Fatalf("Search failed: %v", st.Err)
	}
	for _, u := range st.Results {
		status := "not_following"
		if u.FollowStatus != nil {
			status = *u.FollowStatus
		}
		log.Printf("%-20s followers=%d following=%d %s", u.Username, u.FollowersCount, u.FollowingCount, status)
	}
	if len(st.Results) == 0 {
		log.Println("No users found.")
	}
}
