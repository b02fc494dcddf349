package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"cheers/internal/config"
	"cheers/internal/db"
)

// PocketBase API endpoints
const (
	collectionsEndpoint = "/api/collections"
)

// Collection schema for PocketBase
type Collection struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Fields  []Field  `json:"fields"`
	Indexes []string `json:"indexes"`
}

// Field represents a schema field in PocketBase
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Options  any    `json:"options,omitempty"`
}

// CollectionListResponse represents the response when listing collections
type CollectionListResponse struct {
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalItems int          `json:"totalItems"`
	Items      []Collection `json:"items"`
}

func main() {
	log.SetTimeFormat(time.Stamp)

	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	manager, err := db.InitManager(cfg.PBURL, cfg.PBEmail, cfg.PBPassword)
	if err != nil {
		log.Fatal("Failed to initialize database manager", "error", err)
	}
	log.Info("Authentication successful")

	exists, err := collectionExists(manager, db.KVCollection)
	if err != nil {
		log.Fatal("Failed to check if collection exists", "error", err)
	}
	if exists {
		log.Info("Collection already exists", "name", db.KVCollection)
		return
	}

	if err := createGenericCollection(manager, kvCollection()); err != nil {
		log.Fatal("Failed to create collection", "name", db.KVCollection, "error", err)
	}
	log.Info("Collection created successfully", "name", db.KVCollection)
}

func readBody(resp *http.Response, what string) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp db.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
			return nil, fmt.Errorf("failed to %s with status %d: %s", what, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to %s: %s", what, errResp.Message)
	}
	return body, nil
}

// collectionExists checks if a collection with the given name exists
func collectionExists(manager *db.Manager, name string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, manager.BaseURL+collectionsEndpoint+"?perPage=500", nil)
	if err != nil {
		return false, err
	}

	resp, err := manager.DoRequest(req)
	if err != nil {
		return false, err
	}
	body, err := readBody(resp, "list collections")
	if err != nil {
		return false, err
	}

	var listResp CollectionListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return false, err
	}

	for _, collection := range listResp.Items {
		if collection.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func createGenericCollection(manager *db.Manager, collection Collection) error {
	jsonData, err := json.Marshal(collection)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, manager.BaseURL+collectionsEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := manager.DoRequest(req)
	if err != nil {
		return err
	}
	_, err = readBody(resp, "create collection")
	return err
}

func kvCollection() Collection {
	return Collection{
		Name: db.KVCollection,
		Type: "base",
		Fields: []Field{
			{Name: "key", Type: "text", Required: true},
			{
				Name:     "value",
				Type:     "text",
				Required: false,
				Options: map[string]any{
					"max": 0,
				},
			},
		},
		Indexes: []string{fmt.Sprintf("CREATE UNIQUE INDEX `key_index` ON `%s` (`key`)", db.KVCollection)},
	}
}
