package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/docopt/docopt-go"

	"linktide.com/client"
)

const ClientCtlVersion = "0.0.1"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Linktide client control.

Usage:
    clientctl tail --connect_url=<connect_url> [--jwt=<jwt>]
        [--type=<type>] [--sort=<sort>] [--page=<page>]
        [--page_count=<page_count>]
    clientctl user-id --jwt=<jwt>
    clientctl path <path>

Options:
    -h --help                  Show this screen.
    --version                  Show version.
    --connect_url=<connect_url>  Websocket url of the backend.
    --jwt=<jwt>                Your login JWT.
    --type=<type>              Listing type (all, subscribed) [default: all].
    --sort=<sort>              Sort (hot, new, topday, ...) [default: hot].
    --page=<page>              Page number [default: 1].
    --page_count=<page_count>  Print this many listing pages then exit.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], ClientCtlVersion)
	if err != nil {
		panic(err)
	}

	if tail_, _ := opts.Bool("tail"); tail_ {
		tail(opts)
	} else if userId_, _ := opts.Bool("user-id"); userId_ {
		userId(opts)
	} else if path_, _ := opts.Bool("path"); path_ {
		path(opts)
	}
}

// connect a session and print post listings as they arrive
func tail(opts docopt.Opts) {
	connectUrl, _ := opts.String("--connect_url")
	jwt, _ := opts.String("--jwt")

	var pageCount int
	if pageCount_, err := opts.Int("--page_count"); err == nil {
		pageCount = pageCount_
	} else {
		pageCount = -1
	}

	typeSlug, _ := opts.String("--type")
	sortSlug, _ := opts.String("--sort")
	page, err := opts.Int("--page")
	if err != nil {
		page = 1
	}

	filterPath := fmt.Sprintf("/home/type/%s/sort/%s/page/%d", typeSlug, sortSlug, page)
	listingType, sortType, page, err := client.ParseHomePath(filterPath)
	if err != nil {
		Out.Printf("Invalid filter key (%s).", err)
		return
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := client.NewIdentity("")
	if jwt != "" {
		if err := identity.SetJwt(jwt); err != nil {
			Out.Printf("Invalid jwt (%s).", err)
			return
		}
	}

	dispatcher := client.NewDispatcher()
	session := client.NewSessionWithDefaults(cancelCtx, connectUrl, dispatcher)
	defer session.Close()

	service := client.NewService(session, identity)

	pages := make(chan *client.GetPostsResponse, 16)
	unsub := dispatcher.AddMessageCallback(client.OpGetPosts, func(msg *client.Message) {
		select {
		case pages <- msg.Payload.(*client.GetPostsResponse):
		default:
			// never block dispatch
		}
	})
	defer unsub()

	effects := &client.HomeEffects{
		Alert: func(errorMessage string) {
			Out.Printf("error: %s", errorMessage)
		},
	}
	store := client.NewHomeStore(
		service,
		identity,
		dispatcher,
		effects,
		listingType,
		sortType,
		page,
	)
	defer store.Unmount()

	session.Open()
	store.Mount()

	for i := 0; pageCount < 0 || i < pageCount; i += 1 {
		select {
		case res := <-pages:
			state := store.State()
			Out.Printf(
				"%s %s page %d (%d posts)",
				state.ListingType,
				state.SortType,
				state.Page,
				len(res.Posts),
			)
			for _, post := range res.Posts {
				Out.Printf(
					"  %6d %4d %s",
					post.Id,
					post.Score,
					post.Name,
				)
			}
		case <-session.Done():
			Out.Printf("Connection closed.")
			return
		}
	}
}

// print the user id claim from the jwt
func userId(opts docopt.Opts) {
	jwt, _ := opts.String("--jwt")

	user, err := client.ParseUserJwtUnverified(jwt)
	if err != nil {
		Out.Printf("Invalid jwt (%s).", err)
		return
	}

	Out.Printf("%d %s", user.Id, user.Username)
}

// parse a home path and print the canonical encoding
func path(opts docopt.Opts) {
	pathStr, _ := opts.String("<path>")

	listingType, sortType, page, err := client.ParseHomePath(pathStr)
	if err != nil {
		Out.Printf("Invalid path (%s).", err)
		return
	}

	Out.Printf("%s", client.HomePath(listingType, sortType, page))
}
