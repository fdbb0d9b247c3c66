/*
Package sanitizer cleans text flowing between participants and the messaging platform.

CleanHTML restricts authored block text to the HTML subset the platform renders,
and SanitizeInput guards inbound participant text before it reaches validators,
trigger matching, or persisted state.
*/
package sanitizer
