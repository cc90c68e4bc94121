package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"product-catalog/internal/catalogtest"
	"product-catalog/internal/client"
	"product-catalog/internal/config"
	"product-catalog/internal/domain"
	"product-catalog/internal/logger"
	"product-catalog/internal/store"
)

func main() {
	fake := flag.Bool("fake", false, "run against an in-process fake backend seeded with sample products")
	flag.Parse()

	// Load .env before viper reads the environment
	godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		log = logger.NewWithDefaults()
	}
	defer log.Sync()

	if *fake {
		backend := catalogtest.New()
		backend.Seed(23, "electronics", "books", "clothing")
		srv := httptest.NewServer(backend.Handler())
		defer srv.Close()
		cfg.Backend.BaseURL = srv.URL
		log.Info("Using in-process fake backend", zap.String("url", srv.URL))
	}

	log.Info("Starting product catalog client",
		zap.String("env", cfg.App.Env),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	repo := client.New(cfg.Backend, log)
	listStore := store.New(repo, cfg.Store, log)
	defer listStore.Close()

	snapshots, unsubscribe := listStore.Subscribe()
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for snap := range snapshots {
			render(snap)
		}
	}()

	listStore.LoadList(nil)

	fmt.Println("commands: list | page <n> | more | search <term> | filter <type> | delete <id> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		dispatch(ctx, listStore, scanner.Text())
	}
}

func dispatch(ctx context.Context, s *store.Store, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch fields[0] {
	case "list":
		s.Refresh()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println("usage: page <n>")
			return
		}
		s.ChangePage(n)
	case "more":
		s.LoadMore()
	case "search":
		s.SearchInput(arg)
	case "filter":
		s.ChangeFilter(domain.FilterQuery{Type: arg})
	case "delete":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Println("usage: delete <id>")
			return
		}
		s.DeleteProduct(ctx, id)
	case "quit", "exit":
		os.Exit(0)
	default:
		fmt.Println("unknown command:", fields[0])
	}
}

func render(snap domain.ListState) {
	switch snap.Status {
	case domain.StatusLoading, domain.StatusLoadingMore:
		fmt.Println("... loading")
	case domain.StatusError:
		fmt.Println("error:", snap.ErrorMessage)
	case domain.StatusSuccess:
		for _, p := range snap.Items {
			fmt.Printf("  #%d  %-24s %-12s %10.2f\n", p.ID, p.Name, p.Type, p.Price)
		}
		if snap.ActiveQuery.Search != "" {
			fmt.Printf("  %d match(es) for %q\n", len(snap.Items), snap.ActiveQuery.Search)
		} else {
			fmt.Printf("  page %d/%d (%d items)\n",
				snap.Pagination.Page, snap.Pagination.TotalPages, snap.Pagination.TotalItems)
		}
	}
}
