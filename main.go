package main

import (
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matst80/slask-storefront/pkg/cart"
	"github.com/matst80/slask-storefront/pkg/catalog"
	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/messaging"
	"github.com/matst80/slask-storefront/pkg/remote"
	"github.com/matst80/slask-storefront/pkg/server"
	"github.com/matst80/slask-storefront/pkg/storage"
	"github.com/matst80/slask-storefront/pkg/types"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")
var listenAddress = flag.String("listen", ":8080", "api listen address")
var debugAddress = flag.String("debug-listen", ":8081", "metrics and profiling listen address")

func makeKvStore() storage.KeyValueStore {
	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl == "" {
		log.Printf("no redis url provided, using in-memory store")
		return storage.NewMemoryStore()
	}
	return storage.NewRedisStore(redisUrl, os.Getenv("REDIS_PASSWORD"), 0)
}

func loadBaseline() []types.Product {
	path := os.Getenv("BASELINE_PRODUCTS_FILE")
	if path == "" {
		path = "data/products.json"
	}
	baseline, err := storage.LoadBaseline(path)
	if err != nil {
		log.Printf("no baseline catalog loaded from %s: %v", path, err)
		return []types.Product{}
	}
	log.Printf("loaded %d baseline products from %s", len(baseline), path)
	return baseline
}

func main() {
	flag.Parse()
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	kv := makeKvStore()
	overrides := storage.NewOverrideStore(kv)
	baseline := loadBaseline()

	var source catalog.ProductSource
	if backendUrl := os.Getenv("BACKEND_URL"); backendUrl != "" {
		source = remote.NewHTTPProductSource(backendUrl)
	} else {
		log.Printf("no backend url provided, serving local catalog only")
	}

	engine := catalog.NewEngine(source, overrides, baseline)

	ws := &server.WebServer{
		Source:    source,
		Overrides: overrides,
		Baseline:  baseline,
		Engine:    engine,
	}

	if rabbitUrl := os.Getenv("RABBIT_URL"); rabbitUrl != "" {
		prefix := os.Getenv("NODE_NAME")
		if prefix == "" {
			prefix = "storefront"
		}
		transport, err := messaging.ConnectCatalogTransport(rabbitUrl, prefix)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		ws.Transport = transport
		err = transport.ListenForChanges(func(topic messaging.ChangeTopic, msg messaging.ChangeMessage) {
			log.Printf("got %s for %s, invalidating view", topic, msg.LocalId)
			engine.Invalidate()
		})
		if err != nil {
			log.Fatalf("Failed to listen for catalog changes: %v", err)
		}
	}

	mux := ws.Handle()
	cartServer := &cart.CartServer{Storage: cart.NewKvCartStorage(kv)}
	cartServer.Register(mux)

	go func() {
		debugMux := http.NewServeMux()
		debugMux.Handle("/metrics", promhttp.Handler())
		if *enableProfiling {
			debugMux.HandleFunc("/debug/pprof/", pprof.Index)
			debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
			debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
			debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		}
		log.Printf("starting debug listener on %s", *debugAddress)
		if err := http.ListenAndServe(*debugAddress, debugMux); err != nil {
			log.Printf("debug listener failed: %v", err)
		}
	}()

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       30 * time.Second,
		Write:      30 * time.Second,
		Idle:       120 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    *listenAddress,
		Handler: mux,
	}, timeouts)

	common.RunServerWithShutdown(srv, "storefront catalog", timeouts.Shutdown, timeouts.Hook)
}
