package api

import (
	"errors"
	"io"

	"vital/internal/audio"

	"github.com/gofiber/fiber/v2"
)

const ringtoneURL = "/api/ringtone/file"

// GetRingtoneHandler reports whether the user has a custom ringtone.
func GetRingtoneHandler(store *audio.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		rt, ok, err := store.Get(userID)
		if err != nil {
			return err
		}
		if !ok {
			return c.JSON(fiber.Map{"success": true, "has_custom": false})
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"has_custom":   true,
			"ringtone_url": ringtoneURL,
			"filename":     rt.Filename,
		})
	}
}

// ServeRingtoneHandler streams the user's custom ringtone audio.
func ServeRingtoneHandler(store *audio.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		rt, ok, err := store.Get(userID)
		if err != nil {
			return err
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "No custom ringtone")
		}
		return c.SendFile(rt.Path)
	}
}

// UploadRingtoneHandler accepts a multipart "ringtone" file and replaces
// any previous custom ringtone. Invalid type or size is rejected with a
// user-facing message, never retried.
func UploadRingtoneHandler(store *audio.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		fh, err := c.FormFile("ringtone")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "No file was uploaded",
			})
		}

		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		rt, err := store.Save(userID, fh.Filename, data)
		if err != nil {
			var invalid *audio.InvalidUploadError
			if errors.As(err, &invalid) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": invalid.Reason,
				})
			}
			return err
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "Ringtone uploaded successfully",
			"ringtone_url": ringtoneURL,
			"filename":     rt.Filename,
		})
	}
}

func DeleteRingtoneHandler(store *audio.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		deleted, err := store.Delete(userID)
		if err != nil {
			return err
		}
		msg := "No custom ringtone found to delete"
		if deleted {
			msg = "Custom ringtone deleted"
		}
		return c.JSON(fiber.Map{"success": true, "message": msg})
	}
}
