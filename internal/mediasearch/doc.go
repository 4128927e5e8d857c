// Package mediasearch finds stock footage, photos and music on Pexels,
// Pixabay and Jamendo and downloads results into a local cache.
//
// Every provider request passes through one shared rate limiter. Downloads
// are cached as <provider>_<id><ext>; an existing cache file is returned
// without touching the network.
package mediasearch
