// Command admin manages administrator accounts out of band.
//
//	admin grant <email>    give the admin role to an existing user
//	admin revoke <email>   take it back
//	admin list             print every administrator
//
// Role changes reach a user's credential at their next login.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pronoelite/pronoelite-api/internal/config"
	"github.com/pronoelite/pronoelite-api/internal/database"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin grant <email> | admin revoke <email> | admin list")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	db, err := database.Open(cfg.Dialect(), cfg.DSN())
	if err != nil {
		fail(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		fail(err)
	}
	users := repository.NewUserRepo(db)

	switch os.Args[1] {
	case "grant", "revoke":
		if len(os.Args) != 3 {
			usage()
		}
		email := os.Args[2]
		err := users.SetAdmin(ctx, email, os.Args[1] == "grant")
		if errors.Is(err, repository.ErrUserNotFound) {
			fail(fmt.Errorf("no user with email %s, they must sign in once first", email))
		}
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s: admin=%t\n", email, os.Args[1] == "grant")
	case "list":
		admins, err := users.ListAdmins(ctx)
		if err != nil {
			fail(err)
		}
		if len(admins) == 0 {
			fmt.Println("no administrators")
			return
		}
		for _, u := range admins {
			fmt.Printf("%s\t%s\t%s\tvip=%t\n", u.ID, u.Email, u.Username, u.IsVIP)
		}
	default:
		usage()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "admin:", err)
	os.Exit(1)
}
