package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/trezcool/educode/core"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	baseURL := os.Getenv("EDUCODE_API_URL")
	if baseURL == "" {
		host := conf.Server.Host
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		baseURL = "http://" + host
	}

	cli := commandLine{
		api:        newAPIClient(baseURL, &http.Client{Timeout: 30 * time.Second}),
		adminEmail: conf.SuperAdminEmail,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp && err != flag.ErrHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
