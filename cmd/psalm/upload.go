package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/store"
	"github.com/spf13/cobra"
)

var uploadSession string

var uploadCmd = &cobra.Command{
	Use:   "upload <pattern>...",
	Short: "Upload documents to the backend",
	Long: `Upload documents matching the given glob patterns. Patterns support
doublestar syntax (e.g. "contracts/**/*.pdf"). With --session the
resulting file references are attached to that session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		var paths []string
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			paths = append(paths, matches...)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files match")
		}

		transport := a.transport(ctx)
		var refs []psalm.UploadRef
		for _, path := range paths {
			ref, err := uploadOne(ctx, transport, path)
			if err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
			fmt.Printf("%s\t%s\n", ref.ID, ref.Name)
			refs = append(refs, ref)
		}

		if uploadSession != "" {
			sess, ok := a.store.Get(uploadSession)
			if !ok {
				return psalm.ErrSessionNotFound
			}
			merged := append(sess.Attachments, refs...)
			return a.store.UpdateSession(uploadSession, store.Update{Attachments: merged})
		}
		return nil
	},
}

func uploadOne(ctx context.Context, transport psalm.Transport, path string) (psalm.UploadRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return psalm.UploadRef{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return psalm.UploadRef{}, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	// TypeByExtension may include parameters ("text/plain; charset=utf-8");
	// the backend expects the bare media type.
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	return transport.UploadFile(ctx, filepath.Base(path), mimeType, info.Size(), f)
}

func init() {
	uploadCmd.Flags().StringVar(&uploadSession, "session", "", "Attach uploads to this session ID")
	rootCmd.AddCommand(uploadCmd)
}
