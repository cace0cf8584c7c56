package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/groupshare/internal/flagx"
	"github.com/dmitrijs2005/groupshare/internal/server"
	"github.com/dmitrijs2005/groupshare/internal/server/admin"
	"github.com/dmitrijs2005/groupshare/internal/server/config"
	"golang.org/x/term"
)

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password for new account: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return string(pw), err
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, rm, err := server.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	tool := admin.New(rm.Accounts(db), readPassword, os.Stdout)
	if err := tool.Run(ctx, flagx.Positional(os.Args[1:])); err != nil {
		db.Close()
		log.Fatalf("%v", err)
	}

}
