package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/config"
	"github.com/tendant/memento/pkg/memento/session"
)

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	var form memento.ContentForm
	var private bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a note, journal entry, story or memory",
		Long: `Save a piece of content to the user_content table.

Content is private unless --private=false is given. Tags are comma separated.`,
		Example: `  memento save --title "First day" --type journal --content "Sunny at the beach" --tags beach,family`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("private") {
				form.IsPrivate = &private
			}

			ctx, services, err := loadServices(cmd)
			if err != nil {
				return fmt.Errorf("failed to configure services: %w", err)
			}
			defer services.Close()

			editor, err := memento.NewEditor(services.Options()...)
			if err != nil {
				return err
			}

			record, err := editor.Submit(ctx, form)
			if err != nil {
				var verr *memento.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
					}
					return errors.New("content is incomplete")
				}
				var remote *memento.RemoteError
				if errors.As(err, &remote) {
					return errors.New(remote.Notice)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), memento.NoticeContentSaved)
			verbosef(cmd, cmd.OutOrStdout(), "Type: %s, tags: %v, private: %t\n", record.ContentType, record.Tags, record.IsPrivate)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Title, "title", "", "title of the content")
	cmd.Flags().StringVar(&form.ContentType, "type", string(memento.ContentTypeNote), "note, journal, story, memory or other")
	cmd.Flags().StringVar(&form.Content, "content", "", "the content itself")
	cmd.Flags().StringVar(&form.Tags, "tags", "", "comma separated tags")
	cmd.Flags().BoolVar(&private, "private", true, "keep the content private")

	return cmd
}

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a photo, song or document",
		Long: `Upload a file to the bucket of the chosen category and print its public URL.

The category decides the bucket; the file itself is not inspected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			c, err := memento.ParseCategory(category)
			if err != nil {
				return err
			}

			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("failed to stat file: %w", err)
			}

			ctx, services, err := loadServices(cmd)
			if err != nil {
				return fmt.Errorf("failed to configure services: %w", err)
			}
			defer services.Close()

			uploader, err := memento.NewUploader(services.Options()...)
			if err != nil {
				return err
			}

			verbosef(cmd, cmd.OutOrStdout(), "Uploading %s to %s\n", filePath, c.Bucket())
			result, err := uploader.Upload(ctx, c, []memento.File{{
				Name:     filepath.Base(filePath),
				Size:     info.Size(),
				MimeType: mime.TypeByExtension(filepath.Ext(filePath)),
				Body:     f,
			}})
			if err != nil {
				var remote *memento.RemoteError
				if errors.As(err, &remote) {
					return errors.New(remote.Notice)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), memento.NoticeUploadSuccess)
			fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", result.PublicURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", string(memento.DefaultCategory), "image, audio or document")

	return cmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for the jwt session provider",
		Long:  `Sign an HS256 access token with JWT_SECRET. Pass it to other commands with --token or to the server as a bearer token.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(config.WithFile(configFile), config.WithEnv())
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := session.NewJWTResolver([]byte(cfg.JWT.Secret)).Issue(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
