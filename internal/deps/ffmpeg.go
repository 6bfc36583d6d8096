package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the FFmpeg binary yt-dlp will execute for audio extraction.
//
// yt-dlp prefers an ffmpeg inside --ffmpeg-location when one is configured and
// otherwise resolves "ffmpeg" from PATH. The lookup here follows the same order
// so status output matches what a download will actually run.
func CheckFFmpeg(location string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp for audio extraction",
	}

	if dir := strings.TrimSpace(location); dir != "" {
		candidate := filepath.Join(dir, executableName("ffmpeg"))
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
		result.Command = candidate
		result.Detail = fmt.Sprintf("binary %q not found in ffmpeg_location", candidate)
		return result
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
