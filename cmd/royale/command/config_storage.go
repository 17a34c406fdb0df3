package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-royale/internal/commands"
	"github.com/pixil98/go-royale/internal/game"
	"github.com/pixil98/go-royale/internal/storage"
)

type StorageConfig struct {
	Commands AssetConfig[*commands.Command] `json:"commands"`
	Items    AssetConfig[*game.ItemSpec]    `json:"items"`
	Roles    AssetConfig[*game.RoleSheet]   `json:"roles"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Commands.Validate("commands"))
	el.Add(c.Items.Validate("items"))
	el.Add(c.Roles.Validate("roles"))
	return el.Err()
}

// BuildKit loads the starting kit, ordered by asset id.
func (c *StorageConfig) BuildKit() ([]*game.ItemSpec, error) {
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}

	kit := storage.Sorted[*game.ItemSpec](items)
	if len(kit) == 0 {
		return nil, fmt.Errorf("no items found in %q", c.Items.Path)
	}
	return kit, nil
}

// BuildRoleSheets loads the role descriptions and checks every role has one.
func (c *StorageConfig) BuildRoleSheets() (*storage.FileStore[*game.RoleSheet], error) {
	sheets, err := c.Roles.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating role store: %w", err)
	}

	have := map[game.Role]bool{}
	for _, s := range sheets.GetAll() {
		r, _ := game.ParseRole(s.Role)
		have[r] = true
	}

	el := errors.NewErrorList()
	for _, r := range game.AllRoles {
		if !have[r] {
			el.Add(fmt.Errorf("no role sheet for %s", r))
		}
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	return sheets, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
