// Package ytdlp fetches audio from YouTube by shelling out to yt-dlp.
//
// Every FetchAudio call works in its own temp directory so concurrent
// downloads never collide. The returned Audio owns that directory until
// Cleanup is called; on failure the directory is removed before returning.
package ytdlp
