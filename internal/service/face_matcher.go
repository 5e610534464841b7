package service

// FaceMatcher decides whether a captured image matches an enrolled reference.
// The production implementation is a stub; isolating it here lets a real
// biometric engine replace it without touching any caller.
type FaceMatcher interface {
	Match(referencePath, capturedImage string) (bool, error)
}

// StubFaceMatcher accepts any well-formed capture as a successful match.
// This mirrors the system's declared capability limit: presence of an image,
// not its content, is what is verified today.
type StubFaceMatcher struct{}

func (StubFaceMatcher) Match(referencePath, capturedImage string) (bool, error) {
	return capturedImage != "", nil
}
