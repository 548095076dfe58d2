// Command vouch audits videos for Indian media-law compliance using Gemini.
//
// Commands:
//
//	vouch audit FILE       run one audit and print the report
//	vouch models           show the models the next audit would try
//	vouch status           check configuration, directories, and the API key
//	vouch staging list     list staged uploads
//	vouch staging clean    remove staged uploads left by interrupted runs
//	vouch config init      write a sample configuration file
//	vouch config validate  load and validate the configuration
//	vouch serve            serve the HTTP API for the browser front end
//	vouch test-notify      send a test ntfy notification
//	vouch logs             show or follow the log file
package main
