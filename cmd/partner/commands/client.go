package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/partnercenter/internal/config"
	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
	"github.com/fivetwenty-io/partnercenter/pkg/partnerclient"
	"github.com/fivetwenty-io/partnercenter/pkg/refresh"
)

// loginKey is the token store key of tokens saved by the login command.
const loginKey = "login"

// tokenFile returns the path of the local token file.
func (a *app) tokenFile() (string, error) {
	if a.cfg.TokenFile != "" {
		return a.cfg.TokenFile, nil
	}

	dir, err := config.Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, constants.TokenFileName), nil
}

// openStore returns the token store: the local file, backed by Redis or NATS when configured.
func (a *app) openStore(ctx context.Context) (refresh.TokenStore, refresh.CloseFunc, error) {
	path, err := a.tokenFile()
	if err != nil {
		return nil, nil, err
	}

	file := refresh.NewFileStore(path)

	var remote *refresh.StoreConfig

	switch {
	case a.cfg.Cache.RedisAddr != "":
		remote = &refresh.StoreConfig{Type: refresh.StoreTypeRedis, RedisAddr: a.cfg.Cache.RedisAddr}
	case a.cfg.Cache.NATSURL != "":
		remote = &refresh.StoreConfig{
			Type:       refresh.StoreTypeNATS,
			NATSURL:    a.cfg.Cache.NATSURL,
			NATSBucket: a.cfg.Cache.NATSBucket,
		}
	default:
		return file, func() error { return nil }, nil
	}

	shared, closeShared, err := refresh.NewStoreFromConfig(ctx, remote)
	if err != nil {
		a.logger.Warn().Err(err).Str("type", string(remote.Type)).Msg("Shared token store unavailable")

		return file, func() error { return nil }, nil
	}

	return refresh.NewStoreChain(file, shared), closeShared, nil
}

// newClient builds a client from the loaded configuration. Without a configured token, tokens
// come from client credentials when configured, otherwise from a previous login.
func (a *app) newClient(ctx context.Context) (partner.Client, func(), error) {
	partnerConfig := a.cfg.PartnerConfig(a.partnerLogger())

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		closeErr := closeStore()
		if closeErr != nil {
			a.logger.Debug().Err(closeErr).Msg("Closing token store")
		}
	}

	if partnerConfig.AccessToken == "" {
		partnerConfig.RefreshHandlers = []partner.RefreshFunc{a.refreshHandler(store)}
	}

	client, err := partnerclient.New(ctx, partnerConfig)
	if err != nil {
		cleanup()

		if errors.Is(err, constants.ErrTokenNotFound) {
			return nil, nil, constants.ErrTokenNotFound
		}

		return nil, nil, err
	}

	return client, cleanup, nil
}

func (a *app) refreshHandler(store refresh.TokenStore) partner.RefreshFunc {
	opts := []refresh.Option{refresh.WithLogger(a.partnerLogger())}

	oauth := a.cfg.OAuth
	if !oauth.Enabled() {
		return refresh.Cached(store, loginKey, nil, opts...)
	}

	scopes := oauth.Scopes
	if len(scopes) == 0 {
		scopes = []string{partnerclient.DefaultScope}
	}

	source := refresh.ClientCredentials(&clientcredentials.Config{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		TokenURL:     oauth.TokenURL,
		Scopes:       scopes,
	}, opts...)

	return refresh.Cached(store, fmt.Sprintf("oauth:%s", oauth.ClientID), source, opts...)
}
