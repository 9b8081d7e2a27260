package app

import (
	"log"
	"mime"
)

func init() {
	ensureMimeType(".webm", "audio/webm")
	ensureMimeType(".m4a", "audio/mp4")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
