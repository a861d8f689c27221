package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/practice/audio"
	"github.com/jsphweid/practice/constants"
	"github.com/jsphweid/practice/db"
	"github.com/jsphweid/practice/library"
	"github.com/jsphweid/practice/metrics"
	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/scores"
	"github.com/jsphweid/practice/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var (
	servePort          int
	serveLibraryDriver string
	serveLibraryDSN    string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default $PORT or 8080)")
	serveCmd.Flags().StringVar(&serveLibraryDriver, "library-driver", "", "sqlite or pgx (default $LIBRARY_DRIVER or sqlite)")
	serveCmd.Flags().StringVar(&serveLibraryDSN, "library-dsn", "", "uploaded score library location (default $LIBRARY_DSN)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves",
	Long:  `Serves the practice state, scores and click track over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		if servePort == 0 {
			servePort = constants.GetPort()
		}
		if serveLibraryDriver == "" {
			serveLibraryDriver = constants.GetLibraryDriver()
		}
		if serveLibraryDSN == "" {
			serveLibraryDSN = constants.GetLibraryDSN()
		}
		serve()
	},
}

type scoreLister interface {
	ListScoreNames(ctx context.Context) ([]string, error)
}

type urlPresigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type uploadSaver interface {
	Save(ctx context.Context, score model.UploadedScore) error
}

// server holds what the handlers share. Optional collaborators are nil when
// not configured.
type server struct {
	store     *store.Store
	library   uploadSaver
	backend   scoreLister
	presigner urlPresigner
	registry  *prometheus.Registry
}

func newRouter(s *server) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(requestIDMiddleware)
	router.HandleFunc("/state", s.handleGetState).Methods("GET")
	router.HandleFunc("/state/stream", s.handleStateStream).Methods("GET")
	router.HandleFunc("/actions", s.handleDispatch).Methods("POST")
	router.HandleFunc("/scores", s.handleListScores).Methods("GET")
	router.HandleFunc("/scores", s.handleUpload).Methods("POST")
	router.HandleFunc("/scores/sync", s.handleSync).Methods("POST")
	router.HandleFunc("/scores/{name}", s.handleGetScore).Methods("GET")
	router.HandleFunc("/beat", s.handleBeat).Methods("POST")
	router.HandleFunc("/audio/{which:reference|bottom}", s.handleAudio).Methods("POST")
	router.HandleFunc("/click.mid", s.handleClick).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins: constants.GetCorsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return c.Handler(router)
}

// restoreUploads replays stored uploads into st, then selects the score that
// was selected before.
func restoreUploads(ctx context.Context, lib *library.Library, st *store.Store) error {
	uploads, err := lib.All(ctx)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return nil
	}
	before := st.State()
	for _, upload := range uploads {
		st.Dispatch(model.NewScoreFromUpload{Score: upload})
	}
	st.Dispatch(model.ChangeScore{Score: before.Score, AccompanimentSound: before.AccompanimentSound})
	fmt.Printf("Restored %v uploaded scores\n", len(uploads))
	return nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		panic("Could not register metrics: " + err.Error())
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func serve() {
	ctx := context.Background()
	st := store.New(model.InitialState(scores.Names()), store.WithBeatDebounce(constants.GetBeatDebounce()))
	s := &server{store: st, registry: newRegistry()}

	lib, err := library.Open(serveLibraryDriver, serveLibraryDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()
	if err := lib.Migrate(ctx); err != nil {
		log.Fatal(err)
	}
	if err := restoreUploads(ctx, lib, st); err != nil {
		log.Fatal(err)
	}
	s.library = lib

	backend, err := db.NewBackendFromEnv()
	if err != nil {
		fmt.Printf("Score backend disabled: %v\n", err)
	} else {
		s.backend = backend
	}

	presigner, err := audio.NewFromEnv(ctx)
	if err != nil {
		fmt.Printf("Audio presigning disabled: %v\n", err)
	} else if presigner != nil {
		s.presigner = presigner
	}

	addr := fmt.Sprintf(":%v", servePort)
	fmt.Printf("Serving %v scores on %v\n", len(st.State().Scores), addr)
	log.Fatal(http.ListenAndServe(addr, newRouter(s)))
}
