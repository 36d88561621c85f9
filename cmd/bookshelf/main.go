package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/books"
	"bookshelf/internal/config"
	"bookshelf/internal/session"
	"bookshelf/internal/state"
	"bookshelf/internal/token"
	"bookshelf/internal/util"
)

const usage = `usage: bookshelf [-config path] <command> [args]

commands:
  register <email> <password>   create an account and sign in
  login    <email> <password>   sign in
  logout                        sign out
  whoami                        show the signed-in identity
  list                          list the book collection
  add      <title> <author>     add a book
  delete   <id>                 delete a book by id
`

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	timeout, err := config.ParseRequestTimeout(cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to parse request timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var store token.Store
	switch cfg.TokenStore {
	case "redis":
		store = token.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTokenKey)
	default:
		path, err := config.ResolveTokenPath(cfg)
		if err != nil {
			log.Fatalf("failed to resolve token path: %v", err)
		}
		store, err = token.NewFileStore(path)
		if err != nil {
			log.Fatalf("failed to init token store: %v", err)
		}
	}

	api := apiclient.NewClient(cfg.APIBaseURL, timeout)
	sess := session.NewManager(api, store, logger)
	collection := books.NewStore(api, sess, logger)
	provider := state.New(sess, collection, logger)

	ctx := context.Background()
	provider.Start(ctx)

	if err := run(ctx, provider, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, provider *state.Provider, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) != 2 {
			return fmt.Errorf("usage: bookshelf register <email> <password>")
		}
		if err := provider.Register(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("Registered and signed in as", rest[0])
		return nil
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("usage: bookshelf login <email> <password>")
		}
		if err := provider.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("Signed in as", rest[0])
		return nil
	case "logout":
		provider.Logout(ctx)
		fmt.Println("Signed out")
		return nil
	case "whoami":
		snap, err := requireSession(provider)
		if err != nil {
			return err
		}
		fmt.Println(snap.Identity.Email)
		return nil
	case "list":
		snap, err := requireSession(provider)
		if err != nil {
			return err
		}
		if len(snap.Books) == 0 {
			fmt.Println("No books yet.")
			return nil
		}
		for _, b := range snap.Books {
			fmt.Printf("%s\t%s by %s\n", b.ID, b.Title, b.Author)
		}
		return nil
	case "add":
		if len(rest) != 2 {
			return fmt.Errorf("usage: bookshelf add <title> <author>")
		}
		if rest[0] == "" || rest[1] == "" {
			return fmt.Errorf("title and author are required")
		}
		if _, err := requireSession(provider); err != nil {
			return err
		}
		if err := provider.AddBook(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("Added", rest[0])
		return nil
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("usage: bookshelf delete <id>")
		}
		if _, err := requireSession(provider); err != nil {
			return err
		}
		if err := provider.DeleteBook(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown command %q (run bookshelf -h for usage)", cmd)
	}
}

// requireSession is the route guard: commands that need a signed-in user
// read only the session presence.
func requireSession(provider *state.Provider) (state.Snapshot, error) {
	snap := provider.Snapshot()
	if !snap.Authenticated {
		return snap, fmt.Errorf("not signed in; run bookshelf login first")
	}
	return snap, nil
}
