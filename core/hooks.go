package core

// Hook interfaces for model lifecycle events
type BeforeInserter interface{ BeforeInsert() error }
type AfterFinder interface{ AfterFind() error }
