package sitestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/config"
	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	pingTimeout time.Duration
	logger      *zap.Logger
}

// NewClient создает клиент удалённого документного хранилища сайтов
func NewClient(cfg *config.RemoteConfig, logger *zap.Logger) repository.RemoteSiteRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		pingTimeout: cfg.PingTimeout,
		logger:      logger,
	}
}

// FetchAll читает коллекцию сайтов целиком. Документы декодируются
// по одному: битый документ логируется и пропускается, не прерывая выборку.
func (c *client) FetchAll(ctx context.Context) ([]*domain.RemoteSiteDocument, error) {
	var envelope struct {
		Sites []json.RawMessage `json:"sites"`
	}

	if err := c.getJSON(ctx, "/v1/sites", &envelope); err != nil {
		return nil, err
	}

	docs := make([]*domain.RemoteSiteDocument, 0, len(envelope.Sites))
	for i, raw := range envelope.Sites {
		var doc domain.RemoteSiteDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			c.logger.Warn("Skipping malformed site document",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (c *client) FetchUserFavorites(ctx context.Context, userID string) ([]*domain.RemoteFavorite, error) {
	var envelope struct {
		Favorites []*domain.RemoteFavorite `json:"favorites"`
	}

	path := fmt.Sprintf("/v1/users/%s/favorites", userID)
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}

	return envelope.Favorites, nil
}

func (c *client) FetchUserVisited(ctx context.Context, userID string) ([]*domain.RemoteVisit, error) {
	var envelope struct {
		Visited []*domain.RemoteVisit `json:"visited"`
	}

	path := fmt.Sprintf("/v1/users/%s/visited", userID)
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}

	return envelope.Visited, nil
}

// PushUserFavorites заменяет список избранного пользователя в удалённом
// хранилище. Локальные целочисленные ID сериализуются в строковые.
func (c *client) PushUserFavorites(ctx context.Context, userID string, favorites []*domain.FavoriteSite) error {
	remote := make([]*domain.RemoteFavorite, 0, len(favorites))
	for _, f := range favorites {
		remote = append(remote, &domain.RemoteFavorite{
			SiteID:    strconv.FormatInt(f.SiteID, 10),
			CreatedAt: f.CreatedAt,
		})
	}

	body := map[string]interface{}{"favorites": remote}
	path := fmt.Sprintf("/v1/users/%s/favorites", userID)
	return c.putJSON(ctx, path, body)
}

func (c *client) PushUserVisited(ctx context.Context, userID string, visits []*domain.VisitedSite) error {
	remote := make([]*domain.RemoteVisit, 0, len(visits))
	for _, v := range visits {
		remote = append(remote, &domain.RemoteVisit{
			SiteID:    strconv.FormatInt(v.SiteID, 10),
			VisitedAt: v.VisitedAt,
			Notes:     v.Notes,
		})
	}

	body := map[string]interface{}{"visited": remote}
	path := fmt.Sprintf("/v1/users/%s/visited", userID)
	return c.putJSON(ctx, path, body)
}

// Ping - проба доступности удалённого хранилища с коротким таймаутом.
// Любая ошибка трактуется как офлайн.
func (c *client) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Remote store ping failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Remote store returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("remote store error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode response", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *client) putJSON(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("Failed to create request", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("Remote store returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("remote store error: status %d", resp.StatusCode)
	}

	return nil
}

func (c *client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
