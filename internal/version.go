package internal

// Version is the signspeak release version
const Version = "0.4.1"
