package telegram

// StartText answers /start.
const StartText = `🤖 Welcome to YouTube Transcript Bot!

I can help you transcribe YouTube videos. Here's how to use me:

1. Send me a YouTube link
2. I'll download the audio and transcribe it
3. I'll send you back the transcription

Commands:
/start - Show this help message
/help - Show help information

Just paste a YouTube URL and I'll get started!`

// HelpText answers /help.
const HelpText = `📖 How to use this bot:

1. Copy a YouTube video URL
2. Paste it in a message to me
3. Wait for me to download and transcribe the audio
4. I'll send you the transcription

Supported YouTube URL formats:
• https://www.youtube.com/watch?v=VIDEO_ID
• https://youtu.be/VIDEO_ID
• https://youtube.com/embed/VIDEO_ID

Note: The transcription process may take a few minutes depending on the video length.`
