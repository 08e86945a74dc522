package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

//go:generate go tool mockgen -source=blob.go -destination=blob_mock_test.go -package=source

// blobDownloader is just an interface over [*azblob.Client]
type blobDownloader interface {
	// DownloadStream maps to [azblob.Client.DownloadStream]
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// newBlobClient creates a client for accountURL. URLs carrying a SAS token
// are used without a credential; otherwise cred is used, falling back to
// the default Azure credential chain.
func newBlobClient(accountURL string, cred azcore.TokenCredential) (blobDownloader, error) {
	if strings.Contains(accountURL, "?") {
		client, err := azblob.NewClientWithNoCredential(accountURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating blob client: %w", err)
		}
		return client, nil
	}

	if cred == nil {
		c, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating azure credential: %w", err)
		}
		cred = c
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return client, nil
}
