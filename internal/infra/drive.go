package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrReauthRequired signals that the stored OAuth token was rejected and the
// user must go through the consent flow again.
var ErrReauthRequired = errors.New("drive: reautorização necessária")

// DriveConfig holds the OAuth application credentials.
type DriveConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// DriveClient uploads and downloads backup files on the user's Google Drive.
// Only the drive.file scope is requested, so the app sees nothing beyond the
// files it created itself.
type DriveClient struct {
	oauth *oauth2.Config
}

func NewDriveClient(cfg DriveConfig) *DriveClient {
	return &DriveClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{drive.DriveFileScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent page URL. Offline access is requested so the
// refresh token survives across sessions.
func (c *DriveClient) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the callback code for a token.
func (c *DriveClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("drive: exchange: %w", err)
	}
	return token, nil
}

func (c *DriveClient) service(ctx context.Context, token *oauth2.Token) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithTokenSource(c.oauth.TokenSource(ctx, token)))
}

// Upload writes content to the named file, updating in place when a file
// with that name already exists so the Drive folder holds one backup, not a
// trail of copies.
func (c *DriveClient) Upload(ctx context.Context, token *oauth2.Token, filename string, content []byte) (string, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return "", err
	}

	existingID, err := c.findFile(svc, filename)
	if err != nil {
		return "", driveErr(err)
	}

	if existingID != "" {
		f, err := svc.Files.Update(existingID, &drive.File{}).
			Media(bytes.NewReader(content)).
			Context(ctx).Do()
		if err != nil {
			return "", driveErr(err)
		}
		return f.Id, nil
	}

	f, err := svc.Files.Create(&drive.File{Name: filename, MimeType: "application/json"}).
		Media(bytes.NewReader(content)).
		Context(ctx).Do()
	if err != nil {
		return "", driveErr(err)
	}
	return f.Id, nil
}

// Download fetches the named file's content.
func (c *DriveClient) Download(ctx context.Context, token *oauth2.Token, filename string) ([]byte, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	fileID, err := c.findFile(svc, filename)
	if err != nil {
		return nil, driveErr(err)
	}
	if fileID == "" {
		return nil, fmt.Errorf("drive: arquivo %q não encontrado", filename)
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, driveErr(err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// findFile resolves a filename to its id, skipping trashed files. Returns ""
// when no file matches.
func (c *DriveClient) findFile(svc *drive.Service, filename string) (string, error) {
	list, err := svc.Files.List().
		Q(fmt.Sprintf("name = '%s' and trashed = false", filename)).
		Fields("files(id, name)").
		PageSize(1).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// driveErr maps auth rejections to ErrReauthRequired and passes everything
// else through.
func driveErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 401 || gerr.Code == 403) {
		return ErrReauthRequired
	}
	return err
}
