// Package collab declares the external collaborator contracts the C/M
// dispatcher's handlers call into (Sources, RefClocks, LocalClock,
// Reference, Manual, Smooth, Rtc, AccessFilter, ClientLog, Keys,
// Housekeeping, Scheduler, Config). It also provides an in-memory reference
// implementation of each except Config, which internal/config implements,
// adequate for wiring a runnable daemon and for
// exercising the handler package's tests without a real clock-discipline
// engine behind it.
package collab
