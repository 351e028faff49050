// Package creds loads robot credentials and dials the robot they describe.
package creds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/robot/client"
	"go.viam.com/utils/rpc"
)

// APIKeyEnv overrides the file's API key when set, so keys can stay out of files on disk.
const APIKeyEnv = "ARPLACE_API_KEY"

// ErrIncomplete is returned when a credentials file is missing a field.
var ErrIncomplete = errors.New("incomplete robot credentials")

// RobotCredentials holds the connection details for a Viam robot.
type RobotCredentials struct {
	Address  string `json:"address"`
	EntityID string `json:"entity_id"`
	APIKey   string `json:"api_key"`
}

// Load reads robot credentials from a JSON file.
func Load(path string) (*RobotCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	var c RobotCredentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.APIKey = key
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every field is set.
func (c *RobotCredentials) Validate() error {
	switch {
	case c.Address == "":
		return fmt.Errorf("%w: address", ErrIncomplete)
	case c.EntityID == "":
		return fmt.Errorf("%w: entity_id", ErrIncomplete)
	case c.APIKey == "":
		return fmt.Errorf("%w: api_key", ErrIncomplete)
	}
	return nil
}

// Dial connects to the robot with API key credentials.
func (c *RobotCredentials) Dial(ctx context.Context, logger logging.Logger) (*client.RobotClient, error) {
	machine, err := client.New(
		ctx,
		c.Address,
		logger,
		client.WithDialOptions(rpc.WithEntityCredentials(
			c.EntityID,
			rpc.Credentials{
				Type:    rpc.CredentialsTypeAPIKey,
				Payload: c.APIKey,
			})),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.Address, err)
	}
	return machine, nil
}
