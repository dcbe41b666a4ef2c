// Package media resolves image paths returned by the API and prepares image
// uploads (type sniffing, size limits, avatar cropping).
package media
