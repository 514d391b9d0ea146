package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// ServerSpec describes the single game server participant.
type ServerSpec struct {
	Image string
	Args  []string // positional arguments appended to the server's run script
}

// ClientSpec describes one client participant. Clients are ordered: the
// position in the roster determines the launch index and debug port offset.
type ClientSpec struct {
	ID    string
	Name  string
	Image string
	Args  []string
}

// safeArgPattern matches argument values that may be inlined into the
// generated entrypoint shell text. Anything else must travel via the sidecar
// argument file; run-script arguments that fail this check are rejected
// outright since the run script's argv contract cannot be replaced by a file.
var safeArgPattern = regexp.MustCompile(`^[A-Za-z0-9._/:=@%+,-]+$`)

func shellSafe(arg string) bool {
	return safeArgPattern.MatchString(arg)
}

// idPattern constrains client IDs to characters valid in an image tag, since
// the ID is embedded in the client's built-image name.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validateImage(role, participant, image string) error {
	if strings.TrimSpace(image) == "" {
		return &BuildError{Role: role, Name: participant, Err: fmt.Errorf("empty image reference")}
	}
	if _, err := name.ParseReference(image); err != nil {
		return &BuildError{Role: role, Name: participant, Err: fmt.Errorf("invalid image reference %q: %w", image, err)}
	}
	return nil
}

func validateRunArgs(role, participant string, args []string) error {
	for _, arg := range args {
		if !shellSafe(arg) {
			return &BuildError{
				Role: role,
				Name: participant,
				Err:  fmt.Errorf("run argument %q contains shell-unsafe characters", arg),
			}
		}
	}
	return nil
}

// Validate checks the server spec before any resource is created.
func (s ServerSpec) Validate() error {
	if err := validateImage(RoleServer, "server", s.Image); err != nil {
		return err
	}
	return validateRunArgs(RoleServer, "server", s.Args)
}

// NormalizeClients validates the roster in place and assigns missing IDs from
// the client's 0-based roster index. An empty roster is rejected: a match
// needs at least one client. IDs must be unique across the roster, since each
// client's image tag and staging artifacts are keyed by its ID.
func NormalizeClients(clients []ClientSpec) error {
	if len(clients) == 0 {
		return fmt.Errorf("client roster is empty")
	}
	// IDs are lower-cased inside image tags, so uniqueness is case-insensitive.
	seen := make(map[string]string, len(clients))
	for i := range clients {
		c := &clients[i]
		if strings.TrimSpace(c.ID) == "" {
			c.ID = strconv.Itoa(i)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("client %d has no name", i)
		}
		if !idPattern.MatchString(c.ID) {
			return fmt.Errorf("client %q has invalid id %q", c.Name, c.ID)
		}
		key := strings.ToLower(c.ID)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("clients %q and %q share id %q", prev, c.Name, c.ID)
		}
		seen[key] = c.Name
		if err := validateImage(RoleClient, c.Name, c.Image); err != nil {
			return err
		}
		if err := validateRunArgs(RoleClient, c.Name, c.Args); err != nil {
			return err
		}
	}
	return nil
}
