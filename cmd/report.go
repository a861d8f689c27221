package cmd

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jsphweid/practice/constants"
	"github.com/jsphweid/practice/library"
	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/scores"
	"github.com/spf13/cobra"
)

func init() {
	reportCmd.Flags().StringVar(&serveLibraryDriver, "library-driver", "", "sqlite or pgx (default $LIBRARY_DRIVER or sqlite)")
	reportCmd.Flags().StringVar(&serveLibraryDSN, "library-dsn", "", "uploaded score library location (default $LIBRARY_DSN)")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Reports on the bundled scores and the uploaded score library`,
	Run: func(cmd *cobra.Command, args []string) {
		if serveLibraryDriver == "" {
			serveLibraryDriver = constants.GetLibraryDriver()
		}
		if serveLibraryDSN == "" {
			serveLibraryDSN = constants.GetLibraryDSN()
		}

		ctx := context.Background()
		lib, err := library.Open(serveLibraryDriver, serveLibraryDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer lib.Close()
		if err := lib.Migrate(ctx); err != nil {
			log.Fatal(err)
		}
		uploads, err := lib.All(ctx)
		if err != nil {
			log.Fatal(err)
		}
		writeReport(cmd.OutOrStdout(), analyzeLibrary(scores.All(), uploads))
	},
}

type libraryReport struct {
	numBundled    int
	bundledBytes  int
	numUploads    int
	uploadBytes   int
	shadowed      []string
	largestUpload string
}

func analyzeLibrary(bundled map[string]string, uploads []model.UploadedScore) libraryReport {
	report := libraryReport{numBundled: len(bundled), numUploads: len(uploads)}
	for _, content := range bundled {
		report.bundledBytes += len(content)
	}

	largest := -1
	names := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		report.uploadBytes += len(upload.Content)
		names = append(names, upload.Filename)
		if len(upload.Content) > largest {
			largest = len(upload.Content)
			report.largestUpload = upload.Filename
		}
	}

	// an upload named like a bundled score hides the bundled content
	for _, name := range names {
		if _, ok := bundled[name]; ok {
			report.shadowed = append(report.shadowed, name)
		}
	}
	return report
}

func writeReport(w io.Writer, report libraryReport) {
	fmt.Fprintf(w, "bundled scores: %v (%v bytes)\n", report.numBundled, report.bundledBytes)
	fmt.Fprintf(w, "uploaded scores: %v (%v bytes)\n", report.numUploads, report.uploadBytes)
	if report.numUploads > 0 {
		fmt.Fprintf(w, "largest upload: %v\n", report.largestUpload)
	}
	if len(report.shadowed) > 0 {
		fmt.Fprintf(w, "uploads shadowing bundled scores: %v\n", report.shadowed)
	}
}
