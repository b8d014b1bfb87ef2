package retry

// Attempt runs fn up to maxAttempts times and stops at the first nil error.
// It returns the error from the last attempt. maxAttempts below 1 is treated
// as a single attempt. There is no backoff; callers that need to bound the
// blast radius of an irreversible sequence run the whole sequence inside fn.
func Attempt(maxAttempts int, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for i := 0; i < maxAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
